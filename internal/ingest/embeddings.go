package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/contextutil"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

// embedBatchSize bounds one embeddings API request during backfill.
const embedBatchSize = 100

// TextEmbedder produces embedding vectors for a batch of texts.
type TextEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Backfiller fills in missing chunk embeddings.
type Backfiller struct {
	chunkRepo storage.ChunkStore
	embedder  TextEmbedder
}

// NewBackfiller creates a new Backfiller.
func NewBackfiller(chunkRepo storage.ChunkStore, embedder TextEmbedder) *Backfiller {
	return &Backfiller{chunkRepo: chunkRepo, embedder: embedder}
}

// Run embeds every chunk that has no embedding yet, in batches, until none
// remain. It returns the number of chunks embedded.
func (b *Backfiller) Run(ctx context.Context) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		chunks, err := b.chunkRepo.ListMissingEmbeddings(ctx, embedBatchSize)
		if err != nil {
			return total, fmt.Errorf("failed to list chunks without embeddings: %w", err)
		}
		if len(chunks) == 0 {
			return total, nil
		}

		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}

		vectors, err := b.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return total, fmt.Errorf("failed to embed texts: %w", err)
		}
		if len(vectors) != len(chunks) {
			return total, fmt.Errorf("embeddings count mismatch: got %d, want %d", len(vectors), len(chunks))
		}

		updates := make(map[string]string, len(chunks))
		for i, chunk := range chunks {
			raw, err := json.Marshal(vectors[i])
			if err != nil {
				return total, fmt.Errorf("failed to encode embedding for chunk %s: %w", chunk.ID, err)
			}
			updates[chunk.ID] = string(raw)
		}

		if err := b.chunkRepo.UpdateEmbeddings(ctx, updates); err != nil {
			return total, fmt.Errorf("failed to store embeddings: %w", err)
		}

		total += len(chunks)
		logger.InfoContext(ctx, "embedded chunk batch", "batch", len(chunks), "total", total)
	}
}
