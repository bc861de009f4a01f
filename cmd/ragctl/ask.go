package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/llm"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/retrieval"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

type askCommander struct {
	mode  string
	slugs []string
	topK  int
}

func newAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the knowledge base a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&cmder.mode, "mode", rag.ModeSynthesis,
		fmt.Sprintf("Answer mode (%s)", strings.Join(rag.Modes(), ", ")))
	cmd.Flags().StringSliceVar(&cmder.slugs, "slug", nil, "Limit retrieval to these document slugs")
	cmd.Flags().IntVar(&cmder.topK, "top-k", 0, "Number of fragments to retrieve")

	return cmd
}

func (c *askCommander) run(ctx context.Context, question string) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingsBaseURL, cfg.EmbeddingsAPIKey, cfg.EmbeddingsModel)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	engine := rag.NewEngine(retrieval.New(embedder), docRepo, chunkRepo, llmClient, cfg.Author, cfg.PreloadLimit)

	resp, err := engine.Answer(ctx, rag.AnswerRequest{
		Query: question,
		Slugs: c.slugs,
		TopK:  c.topK,
		Mode:  c.mode,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if len(resp.Citations) > 0 {
		fmt.Println("\nИсточники:")
		for _, cit := range resp.Citations {
			title := cit.BookTitle
			if title == "" {
				title = "неизвестно"
			}
			fmt.Printf("  %d. %s (score %.3f)\n", cit.Index, title, cit.Score)
		}
	}
	return nil
}
