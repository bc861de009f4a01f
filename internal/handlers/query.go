package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/contextutil"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

// QueryHandler handles raw retrieval requests.
type QueryHandler struct {
	engine rag.Engine
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(engine rag.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// QueryRequest represents the HTTP request payload for raw retrieval.
// This mirrors rag.QueryRequest but is defined here for HTTP layer separation.
type QueryRequest struct {
	Query        string   `json:"query"`
	Slug         string   `json:"slug,omitempty"`
	Slugs        []string `json:"slugs,omitempty"`
	TopK         int      `json:"top_k,omitempty"`
	PreloadLimit int      `json:"preload_limit,omitempty"`
	IncludeMeta  bool     `json:"include_meta,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles POST /rag/query.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		logger.WarnContext(ctx, "empty query in request")
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	resp, err := h.engine.Query(ctx, rag.QueryRequest{
		Query:        req.Query,
		Slug:         req.Slug,
		Slugs:        req.Slugs,
		TopK:         req.TopK,
		PreloadLimit: req.PreloadLimit,
		IncludeMeta:  req.IncludeMeta,
	})
	if err != nil {
		handleEngineError(w, r, err, "Failed to process query")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleEngineError maps engine errors to appropriate HTTP status codes.
func handleEngineError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "engine error", "error", err)

	errMsg := strings.ToLower(err.Error())

	// Upstream LLM or embeddings failures -> 502
	if strings.Contains(errMsg, "embed") ||
		strings.Contains(errMsg, "generate answer") ||
		strings.Contains(errMsg, "retrieval failed") {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
