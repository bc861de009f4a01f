package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

func newDocumentsCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List documents in the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocuments(cmd.Context(), status)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (e.g. active)")

	return cmd
}

func runDocuments(ctx context.Context, status string) error {
	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	var docs []storage.DocumentRecord
	if status != "" {
		docs, err = docRepo.ListByStatus(ctx, status)
	} else {
		docs, err = docRepo.ListAll(ctx)
	}
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tVERSION\tTITLE\tSERIES\tSTATUS\tCHUNKS")
	for _, doc := range docs {
		chunks, err := chunkRepo.CountByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\n",
			doc.Slug, doc.Version, doc.Title, doc.Series, doc.Status, chunks)
	}
	return w.Flush()
}
