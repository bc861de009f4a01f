package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/ingest"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <manifest.yaml>",
		Short: "Ingest every document listed in a corpus manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd.Context(), args[0])
		},
	}
}

func runManifest(ctx context.Context, path string) error {
	manifest, err := ingest.LoadManifest(path)
	if err != nil {
		return err
	}

	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline := ingest.NewPipeline(
		storage.NewDocumentRepo(db),
		storage.NewSectionRepo(db),
		storage.NewChunkRepo(db),
	)

	results, err := pipeline.RunManifest(ctx, manifest)
	for _, result := range results {
		fmt.Printf("Ingested document %s: %d sections, %d chunks\n",
			result.DocumentID, result.Sections, result.Chunks)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Done: %d documents. Run 'ragctl embed' to backfill embeddings.\n", len(results))
	return nil
}
