package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentRecord represents one ingested book or workbook.
type DocumentRecord struct {
	ID        string // UUID
	Slug      string // URL-safe identifier, unique together with Version
	Title     string
	Subtitle  string
	Series    string
	DocType   string // "book", "workbook", ...
	Version   int
	Language  string
	Status    string // "active" documents participate in retrieval
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SectionRecord represents one H1-anchored section of a document.
type SectionRecord struct {
	ID         string // UUID
	DocumentID string
	Title      string
	Level      int
	OrderIndex int
	FullPath   string
}

// ChunkRecord represents a bounded span of section text sized for embedding.
// Embedding holds the stored vector as a JSON array string and is empty
// until the backfill pipeline fills it in.
type ChunkRecord struct {
	ID          string // UUID
	DocumentID  string
	SectionID   string
	ChunkIndex  int // 1-based, global across the document's sections
	Text        string
	Embedding   string
	TokensCount int
	QualityFlag string
}

// CandidateRow is the slice of a chunk row that retrieval needs: identity,
// text, and the embedding in its raw stored form.
type CandidateRow struct {
	ID          string
	DocumentID  string
	Text        string
	Embedding   string
	QualityFlag string
}
