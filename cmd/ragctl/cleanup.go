package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

type cleanupCommander struct {
	slugs []string
	apply bool
}

func newCleanupCmd() *cobra.Command {
	cmder := &cleanupCommander{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove outdated document versions",
		Long: `For every slug, keep only the newest document version and delete the
older ones together with their sections and chunks. Without --apply the
command only shows what would be removed.

With --slug, every version of the named documents is deleted instead,
including the newest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringSliceVar(&cmder.slugs, "slug", nil, "Delete every version of this slug (repeatable)")
	cmd.Flags().BoolVar(&cmder.apply, "apply", false, "Actually delete instead of doing a dry run")

	return cmd
}

func (c *cleanupCommander) run(ctx context.Context) error {
	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	docRepo := storage.NewDocumentRepo(db)
	sectionRepo := storage.NewSectionRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	all, err := docRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	victims := c.selectVictims(all)
	if len(victims) == 0 {
		fmt.Println("Nothing to clean up.")
		return nil
	}

	for _, doc := range victims {
		chunks, err := chunkRepo.CountByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		fmt.Printf("- %s v%d %q (%d chunks)\n", doc.Slug, doc.Version, doc.Title, chunks)
	}

	if !c.apply {
		fmt.Printf("Dry run: %d documents would be deleted. Re-run with --apply.\n", len(victims))
		return nil
	}

	// children first, then the document row
	for _, doc := range victims {
		if err := chunkRepo.DeleteByDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("failed to delete chunks of %s: %w", doc.Slug, err)
		}
		if err := sectionRepo.DeleteByDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("failed to delete sections of %s: %w", doc.Slug, err)
		}
		if err := docRepo.Delete(ctx, doc.ID); err != nil {
			return fmt.Errorf("failed to delete document %s: %w", doc.Slug, err)
		}
	}

	fmt.Printf("Deleted %d documents.\n", len(victims))
	return nil
}

// selectVictims picks the documents to delete. With explicit slugs every
// matching version is a victim; otherwise every version but the newest of
// each slug is.
func (c *cleanupCommander) selectVictims(all []storage.DocumentRecord) []storage.DocumentRecord {
	if len(c.slugs) > 0 {
		target := make(map[string]bool, len(c.slugs))
		for _, slug := range c.slugs {
			target[slug] = true
		}
		var victims []storage.DocumentRecord
		for _, doc := range all {
			if target[doc.Slug] {
				victims = append(victims, doc)
			}
		}
		return victims
	}

	bySlug := make(map[string][]storage.DocumentRecord)
	for _, doc := range all {
		bySlug[doc.Slug] = append(bySlug[doc.Slug], doc)
	}

	var victims []storage.DocumentRecord
	for _, docs := range bySlug {
		if len(docs) < 2 {
			continue
		}
		sort.Slice(docs, func(i, j int) bool {
			if docs[i].Version != docs[j].Version {
				return docs[i].Version > docs[j].Version
			}
			return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
		})
		victims = append(victims, docs[1:]...)
	}

	sort.Slice(victims, func(i, j int) bool {
		if victims[i].Slug != victims[j].Slug {
			return victims[i].Slug < victims[j].Slug
		}
		return victims[i].Version < victims[j].Version
	})
	return victims
}
