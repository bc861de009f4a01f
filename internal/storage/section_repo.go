package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SectionStore defines the interface for section storage operations.
type SectionStore interface {
	// DeleteByDocument removes all sections of a document.
	DeleteByDocument(ctx context.Context, documentID string) error
	// InsertBatch inserts sections and returns their generated IDs in input order.
	InsertBatch(ctx context.Context, sections []SectionRecord) ([]string, error)
	// ListByDocument returns a document's sections ordered by order_index.
	ListByDocument(ctx context.Context, documentID string) ([]SectionRecord, error)
}

// SectionRepo provides methods for section operations.
// It implements the SectionStore interface.
type SectionRepo struct {
	db *sql.DB
}

// NewSectionRepo creates a new SectionRepo.
func NewSectionRepo(db *sql.DB) *SectionRepo {
	return &SectionRepo{db: db}
}

// DeleteByDocument removes all sections of a document.
// Used when re-ingesting to replace old structure.
func (r *SectionRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sections WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete sections by document: %w", err)
	}
	return nil
}

// InsertBatch inserts sections in one transaction, assigning a UUID to each,
// and returns the IDs in input order. An empty batch is a no-op.
func (r *SectionRepo) InsertBatch(ctx context.Context, sections []SectionRecord) ([]string, error) {
	if len(sections) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO sections (id, document_id, title, level, order_index, full_path) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare section insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	ids := make([]string, len(sections))
	for i, s := range sections {
		id := s.ID
		if id == "" {
			id = uuid.New().String()
		}
		fullPath := s.FullPath
		if fullPath == "" {
			fullPath = s.Title
		}
		if _, err := stmt.ExecContext(ctx, id, s.DocumentID, s.Title, s.Level, s.OrderIndex, fullPath); err != nil {
			return nil, fmt.Errorf("failed to insert section %d: %w", s.OrderIndex, err)
		}
		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit section batch: %w", err)
	}
	return ids, nil
}

// ListByDocument returns a document's sections ordered by order_index.
func (r *SectionRepo) ListByDocument(ctx context.Context, documentID string) ([]SectionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, document_id, title, level, order_index, full_path FROM sections WHERE document_id = ? ORDER BY order_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sections []SectionRecord
	for rows.Next() {
		var s SectionRecord
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.Title, &s.Level, &s.OrderIndex, &s.FullPath); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sections, nil
}
