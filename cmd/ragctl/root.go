package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/config"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

const rootLongDesc = `ragctl manages the personal book knowledge base.

Examples:
  ragctl ingest book.docx --slug strategy --title "Стратегический интеллект"
  ragctl manifest corpus/manifest.yaml
  ragctl scan corpus/raw
  ragctl embed
  ragctl ask "Что такое стратегический интеллект?"
  ragctl documents
  ragctl cleanup --dry-run`

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "ragctl",
		Short:         "Manage the book knowledge base",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}

	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	cmd.AddCommand(
		newIngestCmd(),
		newManifestCmd(),
		newScanCmd(),
		newEmbedCmd(),
		newAskCmd(),
		newDocumentsCmd(),
		newCleanupCmd(),
	)

	return cmd
}

// openDatabase loads config, opens the SQLite database, and runs migrations.
// The caller owns closing the returned handle.
func openDatabase() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return cfg, db, nil
}
