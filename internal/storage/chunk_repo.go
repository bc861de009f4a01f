package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// InsertBatch inserts chunks in one transaction, assigning UUIDs as needed.
	InsertBatch(ctx context.Context, chunks []ChunkRecord) error
	// DeleteByDocument removes all chunks of a document.
	DeleteByDocument(ctx context.Context, documentID string) error
	// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
	// ListCandidates returns up to limit retrieval candidates: chunks with a
	// stored embedding and an ok quality flag, optionally scoped to documentIDs.
	ListCandidates(ctx context.Context, documentIDs []string, limit int) ([]CandidateRow, error)
	// ListMissingEmbeddings returns up to limit chunks whose embedding is
	// still NULL, skipping rows without a document or without text.
	ListMissingEmbeddings(ctx context.Context, limit int) ([]ChunkRecord, error)
	// UpdateEmbeddings writes serialized embeddings back, keyed by chunk ID.
	UpdateEmbeddings(ctx context.Context, embeddings map[string]string) error
	// CountByDocument returns the number of chunks stored for a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertBatch inserts chunks in one transaction.
// Chunks without an ID get a fresh UUID; an empty quality flag becomes "ok".
func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, document_id, section_id, chunk_index, text, embedding, tokens_count, quality_flag)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		quality := c.QualityFlag
		if quality == "" {
			quality = "ok"
		}
		var tokens any
		if c.TokensCount > 0 {
			tokens = c.TokensCount
		}
		_, err := stmt.ExecContext(ctx,
			id, c.DocumentID, nullable(c.SectionID), c.ChunkIndex,
			c.Text, nullable(c.Embedding), tokens, quality,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk batch: %w", err)
	}
	return nil
}

// DeleteByDocument removes all chunks of a document.
// Used when re-ingesting to replace old content.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}
	return nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	var c ChunkRecord
	var sectionID, embedding sql.NullString
	var tokens sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT id, document_id, section_id, chunk_index, text, embedding, tokens_count, quality_flag FROM chunks WHERE id = ?",
		id,
	).Scan(&c.ID, &c.DocumentID, &sectionID, &c.ChunkIndex, &c.Text, &embedding, &tokens, &c.QualityFlag)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	c.SectionID = sectionID.String
	c.Embedding = embedding.String
	c.TokensCount = int(tokens.Int64)
	return &c, nil
}

// ListCandidates returns up to limit retrieval candidates. Only chunks with
// a non-NULL embedding and quality_flag = 'ok' qualify; when documentIDs is
// non-empty the result is scoped to those documents.
func (r *ChunkRepo) ListCandidates(ctx context.Context, documentIDs []string, limit int) ([]CandidateRow, error) {
	query := "SELECT id, document_id, text, embedding, quality_flag FROM chunks WHERE embedding IS NOT NULL AND quality_flag = 'ok'"
	var args []any
	if len(documentIDs) > 0 {
		query += " AND document_id IN (" + placeholders(len(documentIDs)) + ")"
		args = toArgs(documentIDs)
	}
	query += " ORDER BY document_id, chunk_index"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var candidates []CandidateRow
	for rows.Next() {
		var c CandidateRow
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Text, &c.Embedding, &c.QualityFlag); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return candidates, nil
}

// ListMissingEmbeddings returns up to limit chunks whose embedding is still
// NULL; a non-positive limit returns them all. Broken rows without a
// document ID or without text are excluded so the backfill loop cannot spin
// on them.
func (r *ChunkRepo) ListMissingEmbeddings(ctx context.Context, limit int) ([]ChunkRecord, error) {
	if limit <= 0 {
		// sqlite treats a negative LIMIT as no limit
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, document_id, section_id, chunk_index, text, quality_flag
		 FROM chunks
		 WHERE embedding IS NULL AND document_id != '' AND text != ''
		 ORDER BY document_id, chunk_index
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks without embedding: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []ChunkRecord
	for rows.Next() {
		var c ChunkRecord
		var sectionID sql.NullString
		if err := rows.Scan(&c.ID, &c.DocumentID, &sectionID, &c.ChunkIndex, &c.Text, &c.QualityFlag); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		c.SectionID = sectionID.String
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return chunks, nil
}

// UpdateEmbeddings writes serialized embeddings back, keyed by chunk ID,
// in one transaction.
func (r *ChunkRepo) UpdateEmbeddings(ctx context.Context, embeddings map[string]string) error {
	if len(embeddings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, "UPDATE chunks SET embedding = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare embedding update: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for id, embedding := range embeddings {
		if _, err := stmt.ExecContext(ctx, embedding, id); err != nil {
			return fmt.Errorf("failed to update embedding for chunk %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit embedding updates: %w", err)
	}
	return nil
}

// CountByDocument returns the number of chunks stored for a document.
func (r *ChunkRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}
