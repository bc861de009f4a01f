package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/llm"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/retrieval"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/storage"
)

const (
	defaultTopK         = 5
	defaultPreloadLimit = 2000
	previewRunes        = 500

	unknownLabel    = "неизвестно"
	noResultsAnswer = "В базе не найдено ни одного фрагмента, связанного с запросом."
)

// Engine answers questions over the ingested book corpus.
type Engine interface {
	// Query returns raw scored chunks for a search text.
	Query(ctx context.Context, req QueryRequest) (QueryResponse, error)
	// Answer retrieves relevant chunks and generates an answer with citations.
	Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error)
}

// ChatClient generates chat completions. Implemented by llm.Client.
type ChatClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	retriever    *retrieval.Retriever
	docRepo      storage.DocumentStore
	chunkRepo    storage.ChunkStore
	llmClient    ChatClient
	author       string
	preloadLimit int
	logger       *slog.Logger
}

// NewEngine creates a new RAG engine. preloadLimit caps how many stored
// chunks are loaded per query; zero means the default of 2000.
func NewEngine(
	retriever *retrieval.Retriever,
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	llmClient ChatClient,
	author string,
	preloadLimit int,
) Engine {
	if preloadLimit <= 0 {
		preloadLimit = defaultPreloadLimit
	}
	return &ragEngine{
		retriever:    retriever,
		docRepo:      docRepo,
		chunkRepo:    chunkRepo,
		llmClient:    llmClient,
		author:       author,
		preloadLimit: preloadLimit,
		logger:       slog.Default(),
	}
}

// Query returns raw scored chunks for a search text.
func (e *ragEngine) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	scored, err := e.retrieve(ctx, req.Query, req.Slug, req.Slugs, req.TopK, req.PreloadLimit)
	if err != nil {
		return QueryResponse{}, err
	}

	results := make([]QueryResult, 0, len(scored))
	for _, s := range scored {
		results = append(results, QueryResult{
			ChunkID:    s.ID,
			DocumentID: s.DocumentID,
			Score:      s.Score,
			Text:       truncateRunes(s.Text, previewRunes),
		})
	}

	if req.IncludeMeta && len(results) > 0 {
		meta, err := e.documentMeta(ctx, scored)
		if err != nil {
			return QueryResponse{}, err
		}
		for i := range results {
			doc, ok := meta[results[i].DocumentID]
			if ok {
				results[i].BookTitle = doc.Title
				results[i].BookSeries = doc.Series
			}
			results[i].Author = e.author
		}
	}

	return QueryResponse{
		Count:   len(results),
		Results: results,
	}, nil
}

// Answer retrieves relevant chunks and generates an answer with citations.
func (e *ragEngine) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	logger := e.logger

	mode := req.Mode
	if mode == "" {
		mode = ModeSynthesis
	}
	spec, ok := modeSpecs[mode]
	if !ok {
		return AnswerResponse{}, fmt.Errorf("unknown answer mode %q", req.Mode)
	}

	scored, err := e.retrieve(ctx, req.Query, req.Slug, req.Slugs, req.TopK, req.PreloadLimit)
	if err != nil {
		return AnswerResponse{}, err
	}

	if len(scored) == 0 {
		logger.InfoContext(ctx, "no chunks matched question", "query", req.Query)
		return AnswerResponse{
			Answer:    noResultsAnswer,
			Citations: []Citation{},
		}, nil
	}

	meta, err := e.documentMeta(ctx, scored)
	if err != nil {
		return AnswerResponse{}, err
	}

	contextParts := make([]string, 0, len(scored))
	citations := make([]Citation, 0, len(scored))
	for i, s := range scored {
		idx := i + 1
		title, series := unknownLabel, unknownLabel
		var citTitle, citSeries string
		if doc, ok := meta[s.DocumentID]; ok {
			citTitle, citSeries = doc.Title, doc.Series
			if doc.Title != "" {
				title = doc.Title
			}
			if doc.Series != "" {
				series = doc.Series
			}
		}

		contextParts = append(contextParts, fmt.Sprintf(
			"Источник %d.\nКнига: %s\nСерия: %s\n\nТекст фрагмента:\n%s",
			idx, title, series, s.Text,
		))
		citations = append(citations, Citation{
			Index:      idx,
			ChunkID:    s.ID,
			DocumentID: s.DocumentID,
			Score:      s.Score,
			BookTitle:  citTitle,
			BookSeries: citSeries,
			Author:     e.author,
		})
	}

	contextStr := strings.Join(contextParts, "\n\n---\n\n")

	messages := []llm.Message{
		{Role: "system", Content: spec.systemPrompt},
		{Role: "user", Content: fmt.Sprintf(
			"Вопрос пользователя:\n%s\n\nНиже фрагменты из книг (с источниками):\n\n%s\n\n%s",
			req.Query, contextStr, spec.instruction,
		)},
	}

	logger.InfoContext(ctx, "generating answer",
		"mode", mode,
		"chunks", len(scored),
		"context_length", len(contextStr),
	)

	answer, err := e.llmClient.ChatWithMessages(ctx, messages, llm.ChatParams{
		Temperature: spec.temperature,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return AnswerResponse{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	if req.IncludeMeta != nil && !*req.IncludeMeta {
		citations = []Citation{}
	}

	return AnswerResponse{
		Answer:    answer,
		Citations: citations,
	}, nil
}

// retrieve loads the candidate pool for the requested books and runs the
// similarity retriever over it.
func (e *ragEngine) retrieve(ctx context.Context, query, slug string, slugs []string, k, preloadLimit int) ([]retrieval.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}

	if k <= 0 {
		k = defaultTopK
	}
	if preloadLimit <= 0 {
		preloadLimit = e.preloadLimit
	}

	allSlugs := make([]string, 0, len(slugs)+1)
	if slug != "" {
		allSlugs = append(allSlugs, slug)
	}
	allSlugs = append(allSlugs, slugs...)

	var docIDs []string
	if len(allSlugs) > 0 {
		ids, err := e.docRepo.IDsBySlugs(ctx, allSlugs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve book slugs: %w", err)
		}
		if len(ids) == 0 {
			// Requested books do not exist, nothing to search
			return nil, nil
		}
		docIDs = ids
	}

	rows, err := e.chunkRepo.ListCandidates(ctx, docIDs, preloadLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate chunks: %w", err)
	}

	pool := make([]retrieval.Candidate, 0, len(rows))
	for _, row := range rows {
		pool = append(pool, retrieval.Candidate{
			ID:          row.ID,
			DocumentID:  row.DocumentID,
			Text:        row.Text,
			Embedding:   row.Embedding,
			QualityFlag: row.QualityFlag,
		})
	}

	scored, err := e.retriever.TopK(ctx, query, pool, k)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	return scored, nil
}

// documentMeta loads document records for the scored chunks, keyed by ID.
func (e *ragEngine) documentMeta(ctx context.Context, scored []retrieval.ScoredChunk) (map[string]storage.DocumentRecord, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range scored {
		if !seen[s.DocumentID] {
			seen[s.DocumentID] = true
			ids = append(ids, s.DocumentID)
		}
	}

	docs, err := e.docRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load document metadata: %w", err)
	}

	meta := make(map[string]storage.DocumentRecord, len(docs))
	for _, doc := range docs {
		meta[doc.ID] = doc
	}
	return meta, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
