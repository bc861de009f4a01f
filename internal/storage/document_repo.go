package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetOrCreate looks a document up by (slug, version) and creates it if
	// missing. It returns the document ID either way.
	GetOrCreate(ctx context.Context, doc DocumentRecord) (string, error)
	// GetByID returns a document by ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// ListByIDs returns the documents with the given IDs, in no particular order.
	ListByIDs(ctx context.Context, ids []string) ([]DocumentRecord, error)
	// IDsBySlugs returns the IDs of all documents whose slug is in slugs.
	IDsBySlugs(ctx context.Context, slugs []string) ([]string, error)
	// ListByStatus returns all documents with the given status.
	ListByStatus(ctx context.Context, status string) ([]DocumentRecord, error)
	// ListAll returns every document, newest first.
	ListAll(ctx context.Context) ([]DocumentRecord, error)
	// Delete removes a document; sections and chunks follow via cascade.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = "id, slug, title, subtitle, series, doc_type, version, language, status, created_at, updated_at"

func scanDocument(row interface{ Scan(...any) error }) (*DocumentRecord, error) {
	var doc DocumentRecord
	var subtitle, series sql.NullString
	err := row.Scan(
		&doc.ID, &doc.Slug, &doc.Title, &subtitle, &series,
		&doc.DocType, &doc.Version, &doc.Language, &doc.Status,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Subtitle = subtitle.String
	doc.Series = series.String
	return &doc, nil
}

// GetOrCreate looks a document up by (slug, version) and creates it if
// missing. Existing metadata is left untouched so re-ingesting a book does
// not clobber manually edited titles.
func (r *DocumentRepo) GetOrCreate(ctx context.Context, doc DocumentRecord) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM documents WHERE slug = ? AND version = ? LIMIT 1",
		doc.Slug, doc.Version,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up document: %w", err)
	}

	id = uuid.New().String()
	if doc.DocType == "" {
		doc.DocType = "book"
	}
	if doc.Language == "" {
		doc.Language = "ru"
	}
	if doc.Status == "" {
		doc.Status = "active"
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, slug, title, subtitle, series, doc_type, version, language, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, doc.Slug, doc.Title, nullable(doc.Subtitle), nullable(doc.Series),
		doc.DocType, doc.Version, doc.Language, doc.Status,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

// GetByID returns a document by ID. Returns ErrNotFound if missing.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// ListByIDs returns the documents with the given IDs.
// Unknown IDs are silently skipped.
func (r *DocumentRepo) ListByIDs(ctx context.Context, ids []string) ([]DocumentRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := "SELECT " + documentColumns + " FROM documents WHERE id IN (" + placeholders(len(ids)) + ")"
	return r.queryDocuments(ctx, query, toArgs(ids)...)
}

// IDsBySlugs returns the IDs of all documents whose slug is in slugs.
// Returns an empty slice when no slug matches (not an error).
func (r *DocumentRepo) IDsBySlugs(ctx context.Context, slugs []string) ([]string, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	query := "SELECT id FROM documents WHERE slug IN (" + placeholders(len(slugs)) + ")"
	rows, err := r.db.QueryContext(ctx, query, toArgs(slugs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query document IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan document ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// ListByStatus returns all documents with the given status, ordered by
// series and title for stable UI grouping.
func (r *DocumentRepo) ListByStatus(ctx context.Context, status string) ([]DocumentRecord, error) {
	query := "SELECT " + documentColumns + " FROM documents WHERE status = ? ORDER BY series, title"
	return r.queryDocuments(ctx, query, status)
}

// ListAll returns every document, newest first.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]DocumentRecord, error) {
	query := "SELECT " + documentColumns + " FROM documents ORDER BY created_at DESC"
	return r.queryDocuments(ctx, query)
}

// Delete removes a document; sections and chunks follow via cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) queryDocuments(ctx context.Context, query string, args ...any) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
