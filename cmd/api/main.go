package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/config"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/llm"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/retrieval"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/server"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	// External service clients
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingsBaseURL, cfg.EmbeddingsAPIKey, cfg.EmbeddingsModel)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	// RAG engine
	retriever := retrieval.New(embedder)
	engine := rag.NewEngine(retriever, docRepo, chunkRepo, llmClient, cfg.Author, cfg.PreloadLimit)
	slog.Info("RAG engine initialized", "model", cfg.LLMModel, "preload_limit", cfg.PreloadLimit)

	// Create router with dependencies
	deps := &server.Deps{
		Engine: engine,
		DB:     db,
	}
	router := server.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// setupLogging configures the default structured logger from config.
func setupLogging(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", level.String(), "format", cfg.LogFormat)
}
