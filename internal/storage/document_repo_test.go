package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestDocumentRepo_GetOrCreate(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	id, err := repo.GetOrCreate(ctx, DocumentRecord{
		Slug:    "strategy-book",
		Title:   "Стратегия",
		Version: 1,
	})
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if id == "" {
		t.Fatal("GetOrCreate() returned empty ID")
	}

	doc, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if doc.DocType != "book" {
		t.Errorf("GetOrCreate() DocType = %q, want default %q", doc.DocType, "book")
	}
	if doc.Language != "ru" {
		t.Errorf("GetOrCreate() Language = %q, want default %q", doc.Language, "ru")
	}
	if doc.Status != "active" {
		t.Errorf("GetOrCreate() Status = %q, want default %q", doc.Status, "active")
	}
}

func TestDocumentRepo_GetOrCreate_Idempotent(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "book", Title: "Book", Version: 1})
	if err != nil {
		t.Fatalf("GetOrCreate() first call error = %v", err)
	}

	// Second call with the same (slug, version) returns the same ID and
	// does not overwrite the stored title.
	second, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "book", Title: "Renamed", Version: 1})
	if err != nil {
		t.Fatalf("GetOrCreate() second call error = %v", err)
	}
	if first != second {
		t.Errorf("GetOrCreate() returned different IDs: %q vs %q", first, second)
	}

	doc, err := repo.GetByID(ctx, first)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if doc.Title != "Book" {
		t.Errorf("GetOrCreate() should not overwrite title, got %q", doc.Title)
	}

	// A different version is a separate document.
	third, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "book", Title: "Book", Version: 2})
	if err != nil {
		t.Fatalf("GetOrCreate() with version 2 error = %v", err)
	}
	if third == first {
		t.Error("GetOrCreate() with a new version should create a new document")
	}
}

func TestDocumentRepo_GetByID_NotFound(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))

	_, err := repo.GetByID(context.Background(), "non-existent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_IDsBySlugs(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	idA, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "book-a", Title: "A", Version: 1})
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	idB, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "book-b", Title: "B", Version: 1})
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	tests := []struct {
		name  string
		slugs []string
		want  int
	}{
		{
			name:  "all known slugs",
			slugs: []string{"book-a", "book-b"},
			want:  2,
		},
		{
			name:  "unknown slugs are skipped",
			slugs: []string{"book-a", "missing"},
			want:  1,
		},
		{
			name:  "empty input",
			slugs: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := repo.IDsBySlugs(ctx, tt.slugs)
			if err != nil {
				t.Fatalf("IDsBySlugs() error = %v", err)
			}
			if len(ids) != tt.want {
				t.Errorf("IDsBySlugs() returned %d IDs, want %d", len(ids), tt.want)
			}
		})
	}

	ids, err := repo.IDsBySlugs(ctx, []string{"book-a", "book-b"})
	if err != nil {
		t.Fatalf("IDsBySlugs() error = %v", err)
	}
	found := map[string]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[idA] || !found[idB] {
		t.Errorf("IDsBySlugs() = %v, want both %q and %q", ids, idA, idB)
	}
}

func TestDocumentRepo_ListByStatus(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "active-book", Title: "A", Version: 1}); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if _, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "draft-book", Title: "D", Version: 1, Status: "draft"}); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	active, err := repo.ListByStatus(ctx, "active")
	if err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}
	if len(active) != 1 || active[0].Slug != "active-book" {
		t.Errorf("ListByStatus(active) = %+v, want only active-book", active)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAll() returned %d documents, want 2", len(all))
	}
}

func TestDocumentRepo_ListByIDs(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	id, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "book", Title: "Book", Version: 1})
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	docs, err := repo.ListByIDs(ctx, []string{id, "missing"})
	if err != nil {
		t.Fatalf("ListByIDs() error = %v", err)
	}
	if len(docs) != 1 || docs[0].ID != id {
		t.Errorf("ListByIDs() = %+v, want single document %q", docs, id)
	}

	docs, err = repo.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListByIDs() with empty input error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ListByIDs() with empty input returned %d documents, want 0", len(docs))
	}
}

func TestDocumentRepo_Delete(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	id, err := repo.GetOrCreate(ctx, DocumentRecord{Slug: "book", Title: "Book", Version: 1})
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = repo.GetByID(ctx, id)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}
