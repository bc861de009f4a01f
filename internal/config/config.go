package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DBPath  string
	APIPort string

	// OpenAI-compatible LLM endpoint for answer generation.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// Embeddings endpoint. Falls back to the LLM key when no dedicated
	// embeddings key is configured.
	EmbeddingsBaseURL string
	EmbeddingsAPIKey  string
	EmbeddingsModel   string

	// PreloadLimit caps how many candidate chunks a query loads for scoring.
	PreloadLimit int

	// Author is attached to retrieval results and citations.
	Author string

	// Telegram bot settings. TelegramToken is only required by the bot binary.
	TelegramToken string
	RAGURL        string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a project-root .env
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	llmAPIKey := getEnv("LLM_API_KEY", "")
	if llmAPIKey == "" {
		llmAPIKey = getEnv("OPENAI_API_KEY", "")
	}

	embeddingsAPIKey := getEnv("EMBEDDINGS_API_KEY", "")
	if embeddingsAPIKey == "" {
		embeddingsAPIKey = llmAPIKey
	}

	cfg := &Config{
		DBPath:            getEnv("DB_PATH", "./data/knowledge-base.db"),
		APIPort:           getEnv("API_PORT", "8000"),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:         llmAPIKey,
		LLMModel:          getEnv("LLM_MODEL", "gpt-4.1-mini"),
		EmbeddingsBaseURL: getEnv("EMBEDDINGS_BASE_URL", "https://api.openai.com"),
		EmbeddingsAPIKey:  embeddingsAPIKey,
		EmbeddingsModel:   getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
		Author:            getEnv("CORPUS_AUTHOR", "Валерий Бирюков"),
		TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		RAGURL:            getEnv("RAG_URL", "http://127.0.0.1:8000/rag/answer"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	preloadStr := getEnv("PRELOAD_LIMIT", "2000")
	preload, err := strconv.Atoi(preloadStr)
	if err != nil {
		return nil, fmt.Errorf("PRELOAD_LIMIT must be a valid integer: %w", err)
	}
	if preload <= 0 {
		return nil, fmt.Errorf("PRELOAD_LIMIT must be greater than 0")
	}
	cfg.PreloadLimit = preload

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY or OPENAI_API_KEY is required")
	}

	// Create the data directory for the DB file if needed
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
