package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

type fakeEngine struct {
	queryResp  rag.QueryResponse
	queryErr   error
	answerResp rag.AnswerResponse
	answerErr  error

	gotQuery  *rag.QueryRequest
	gotAnswer *rag.AnswerRequest
}

func (f *fakeEngine) Query(ctx context.Context, req rag.QueryRequest) (rag.QueryResponse, error) {
	f.gotQuery = &req
	if f.queryErr != nil {
		return rag.QueryResponse{}, f.queryErr
	}
	return f.queryResp, nil
}

func (f *fakeEngine) Answer(ctx context.Context, req rag.AnswerRequest) (rag.AnswerResponse, error) {
	f.gotAnswer = &req
	if f.answerErr != nil {
		return rag.AnswerResponse{}, f.answerErr
	}
	return f.answerResp, nil
}

func TestQueryHandler(t *testing.T) {
	engine := &fakeEngine{
		queryResp: rag.QueryResponse{
			Count: 1,
			Results: []rag.QueryResult{
				{ChunkID: "c-1", DocumentID: "doc-1", Score: 0.93, Text: "Фрагмент"},
			},
		},
	}
	handler := NewQueryHandler(engine)

	body := `{"query": "стратегия", "top_k": 3, "include_meta": true}`
	req := httptest.NewRequest(http.MethodPost, "/rag/query", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("QueryHandler status = %v, want %v: %s", w.Code, http.StatusOK, w.Body.String())
	}

	if engine.gotQuery == nil {
		t.Fatal("QueryHandler did not call the engine")
	}
	if engine.gotQuery.Query != "стратегия" || engine.gotQuery.TopK != 3 || !engine.gotQuery.IncludeMeta {
		t.Errorf("QueryHandler passed %+v", engine.gotQuery)
	}

	var resp rag.QueryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || resp.Results[0].ChunkID != "c-1" {
		t.Errorf("QueryHandler response = %+v", resp)
	}
}

func TestQueryHandler_Validation(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{
			name:       "wrong method",
			method:     http.MethodGet,
			body:       "",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "malformed json",
			method:     http.MethodPost,
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing query",
			method:     http.MethodPost,
			body:       `{"top_k": 5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank query",
			method:     http.MethodPost,
			body:       `{"query": "   "}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewQueryHandler(&fakeEngine{})
			req := httptest.NewRequest(tt.method, "/rag/query", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("QueryHandler status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestQueryHandler_EngineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "embedding failure maps to bad gateway",
			err:        errors.New("retrieval failed: failed to embed query: connection refused"),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "storage failure maps to internal error",
			err:        errors.New("failed to load candidate chunks: database is locked"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewQueryHandler(&fakeEngine{queryErr: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/rag/query", strings.NewReader(`{"query": "q"}`))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("QueryHandler status = %v, want %v", w.Code, tt.wantStatus)
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Error == "" {
				t.Error("QueryHandler error response should carry a message")
			}
		})
	}
}
