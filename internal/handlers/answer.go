package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/contextutil"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

// AnswerHandler handles question-answering requests.
type AnswerHandler struct {
	engine rag.Engine
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(engine rag.Engine) *AnswerHandler {
	return &AnswerHandler{engine: engine}
}

// AnswerRequest represents the HTTP request payload for question answering.
// This mirrors rag.AnswerRequest but is defined here for HTTP layer separation.
type AnswerRequest struct {
	Query        string   `json:"query"`
	Slug         string   `json:"slug,omitempty"`
	Slugs        []string `json:"slugs,omitempty"`
	TopK         int      `json:"top_k,omitempty"`
	PreloadLimit int      `json:"preload_limit,omitempty"`
	IncludeMeta  *bool    `json:"include_meta,omitempty"`
	Mode         string   `json:"mode,omitempty"`
}

// ServeHTTP handles POST /rag/answer.
func (h *AnswerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnswerRequest
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

	if req.Mode != "" && !rag.ValidMode(req.Mode) {
		logger.WarnContext(ctx, "unknown answer mode", "mode", req.Mode)
		writeError(w, http.StatusBadRequest, "Unknown mode, use one of: "+strings.Join(rag.Modes(), ", "))
		return
	}

	resp, err := h.engine.Answer(ctx, rag.AnswerRequest{
		Query:        req.Query,
		Slug:         req.Slug,
		Slugs:        req.Slugs,
		TopK:         req.TopK,
		PreloadLimit: req.PreloadLimit,
		IncludeMeta:  req.IncludeMeta,
		Mode:         req.Mode,
	})
	if err != nil {
		handleEngineError(w, r, err, "Failed to generate answer")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
