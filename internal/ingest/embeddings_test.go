package ingest

import (
	"context"
	"errors"
	"testing"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{float64(i), 1}
	}
	return vectors, nil
}

func seedChunks(t *testing.T, pipeline *Pipeline) string {
	t.Helper()
	path := writeTestFile(t, "book.md", testBook)
	result, err := pipeline.IngestDocument(context.Background(), DocumentInput{Path: path, Slug: "test-book"})
	if err != nil {
		t.Fatalf("IngestDocument failed: %v", err)
	}
	return result.DocumentID
}

func TestBackfiller_Run(t *testing.T) {
	pipeline, chunkRepo, _ := newTestPipeline(t)
	seedChunks(t, pipeline)

	embedder := &fakeEmbedder{}
	backfiller := NewBackfiller(chunkRepo, embedder)

	total, err := backfiller.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %v, want 2", total)
	}

	missing, err := chunkRepo.ListMissingEmbeddings(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListMissingEmbeddings failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("chunks still missing embeddings: %v", len(missing))
	}
}

func TestBackfiller_Run_NothingToDo(t *testing.T) {
	_, chunkRepo, _ := newTestPipeline(t)

	embedder := &fakeEmbedder{}
	backfiller := NewBackfiller(chunkRepo, embedder)

	total, err := backfiller.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %v, want 0", total)
	}
	if embedder.calls != 0 {
		t.Errorf("embedder calls = %v, want 0", embedder.calls)
	}
}

func TestBackfiller_Run_EmbedderError(t *testing.T) {
	pipeline, chunkRepo, _ := newTestPipeline(t)
	seedChunks(t, pipeline)

	embedder := &fakeEmbedder{err: errors.New("api unavailable")}
	backfiller := NewBackfiller(chunkRepo, embedder)

	if _, err := backfiller.Run(context.Background()); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestBackfiller_Run_StoresJSONVectors(t *testing.T) {
	pipeline, chunkRepo, _ := newTestPipeline(t)
	docID := seedChunks(t, pipeline)

	backfiller := NewBackfiller(chunkRepo, &fakeEmbedder{})
	if _, err := backfiller.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	candidates, err := chunkRepo.ListCandidates(context.Background(), []string{docID}, 0)
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %v, want 2", len(candidates))
	}
	if candidates[0].Embedding != "[0,1]" {
		t.Errorf("stored embedding = %q, want [0,1]", candidates[0].Embedding)
	}
}
