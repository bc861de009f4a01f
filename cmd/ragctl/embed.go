package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/ingest"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/llm"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

func newEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed",
		Short: "Backfill embeddings for chunks that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEmbed(cmd.Context())
		},
	}
}

func runEmbed(ctx context.Context) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingsBaseURL, cfg.EmbeddingsAPIKey, cfg.EmbeddingsModel)
	backfiller := ingest.NewBackfiller(storage.NewChunkRepo(db), embedder)

	total, err := backfiller.Run(ctx)
	if err != nil {
		return fmt.Errorf("backfill stopped after %d chunks: %w", total, err)
	}

	if total == 0 {
		fmt.Println("All chunks already have embeddings.")
	} else {
		fmt.Printf("Embedded %d chunks with %s.\n", total, cfg.EmbeddingsModel)
	}
	return nil
}
