package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/ingest"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

type ingestCommander struct {
	slug     string
	title    string
	subtitle string
	series   string
	docType  string
	version  int
	language string
}

func newIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest one document into the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.slug, "slug", "", "Document slug (defaults to the slugified file name)")
	cmd.Flags().StringVar(&cmder.title, "title", "", "Document title (defaults to the file name)")
	cmd.Flags().StringVar(&cmder.subtitle, "subtitle", "", "Document subtitle")
	cmd.Flags().StringVar(&cmder.series, "series", "", "Book series")
	cmd.Flags().StringVar(&cmder.docType, "type", "book", "Document type")
	cmd.Flags().IntVar(&cmder.version, "version", 1, "Document version")
	cmd.Flags().StringVar(&cmder.language, "language", "ru", "Document language")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context, path string) error {
	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	slug := c.slug
	if slug == "" {
		slug = ingest.Slugify(name)
	}
	title := c.title
	if title == "" {
		title = name
	}

	pipeline := ingest.NewPipeline(
		storage.NewDocumentRepo(db),
		storage.NewSectionRepo(db),
		storage.NewChunkRepo(db),
	)

	result, err := pipeline.IngestDocument(ctx, ingest.DocumentInput{
		Path:     path,
		Slug:     slug,
		Title:    title,
		Subtitle: c.subtitle,
		Series:   c.series,
		DocType:  c.docType,
		Version:  c.version,
		Language: c.language,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %s: %d sections, %d chunks (document %s)\n",
		slug, result.Sections, result.Chunks, result.DocumentID)
	fmt.Println("Run 'ragctl embed' to backfill embeddings.")
	return nil
}
