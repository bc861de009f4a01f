// Package ingest loads source documents into the knowledge base: parsing,
// sectioning, chunking, and embedding backfill.
package ingest

import (
	"context"
	"fmt"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/chunker"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/contextutil"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/docparse"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

// chunkInsertBatchSize bounds one INSERT transaction during ingest.
const chunkInsertBatchSize = 200

// DocumentInput describes one document to ingest.
type DocumentInput struct {
	Path     string
	Slug     string
	Title    string
	Subtitle string
	Series   string
	DocType  string
	Version  int
	Language string
}

// Result summarizes a completed ingest run for one document.
type Result struct {
	DocumentID string
	Sections   int
	Chunks     int
}

// Pipeline ingests documents into storage.
type Pipeline struct {
	docRepo     storage.DocumentStore
	sectionRepo storage.SectionStore
	chunkRepo   storage.ChunkStore
}

// NewPipeline creates a new ingest Pipeline.
func NewPipeline(docRepo storage.DocumentStore, sectionRepo storage.SectionStore, chunkRepo storage.ChunkStore) *Pipeline {
	return &Pipeline{
		docRepo:     docRepo,
		sectionRepo: sectionRepo,
		chunkRepo:   chunkRepo,
	}
}

// IngestDocument parses the source file, replaces the document's sections and
// chunks, and returns the ingest summary. Re-ingesting the same (slug,
// version) overwrites the previous content and leaves embeddings to be
// backfilled again.
func (p *Pipeline) IngestDocument(ctx context.Context, input DocumentInput) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if input.Path == "" {
		return nil, fmt.Errorf("document path is required")
	}
	if input.Slug == "" {
		return nil, fmt.Errorf("document slug is required")
	}

	blocks, err := docparse.ParseFile(input.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", input.Path, err)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("document %s contains no text", input.Path)
	}

	docID, err := p.docRepo.GetOrCreate(ctx, storage.DocumentRecord{
		Slug:     input.Slug,
		Title:    input.Title,
		Subtitle: input.Subtitle,
		Series:   input.Series,
		DocType:  input.DocType,
		Version:  input.Version,
		Language: input.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create document: %w", err)
	}

	// drop previous content before re-ingesting
	if err := p.chunkRepo.DeleteByDocument(ctx, docID); err != nil {
		return nil, fmt.Errorf("failed to delete old chunks: %w", err)
	}
	if err := p.sectionRepo.DeleteByDocument(ctx, docID); err != nil {
		return nil, fmt.Errorf("failed to delete old sections: %w", err)
	}

	sections := chunker.SplitIntoSections(blocks)

	records := make([]storage.SectionRecord, 0, len(sections))
	for _, section := range sections {
		level := 0
		if section.HeadingBlock != nil {
			level = section.HeadingBlock.Level
		}
		records = append(records, storage.SectionRecord{
			DocumentID: docID,
			Title:      section.Title,
			Level:      level,
			OrderIndex: section.Index,
		})
	}
	sectionIDs, err := p.sectionRepo.InsertBatch(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sections: %w", err)
	}

	// chunk index is 1-based and global across the document's sections
	var chunks []storage.ChunkRecord
	chunkIndex := 0
	for i, section := range sections {
		for _, text := range chunker.BuildChunks(section) {
			chunkIndex++
			chunks = append(chunks, storage.ChunkRecord{
				DocumentID: docID,
				SectionID:  sectionIDs[i],
				ChunkIndex: chunkIndex,
				Text:       text,
			})
		}
	}

	for start := 0; start < len(chunks); start += chunkInsertBatchSize {
		end := start + chunkInsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := p.chunkRepo.InsertBatch(ctx, chunks[start:end]); err != nil {
			return nil, fmt.Errorf("failed to insert chunks: %w", err)
		}
	}

	logger.InfoContext(ctx, "document ingested",
		"document_id", docID,
		"slug", input.Slug,
		"sections", len(sections),
		"chunks", len(chunks),
	)

	return &Result{
		DocumentID: docID,
		Sections:   len(sections),
		Chunks:     len(chunks),
	}, nil
}
