package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

// RAGClient calls the answer endpoint of the RAG API over HTTP.
type RAGClient struct {
	url    string
	client *http.Client
}

// NewRAGClient creates a client for the given answer endpoint URL.
func NewRAGClient(url string) *RAGClient {
	return &RAGClient{
		url: url,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Ask sends a question in the given mode and returns the generated answer.
func (c *RAGClient) Ask(ctx context.Context, query, mode string) (*rag.AnswerResponse, error) {
	includeMeta := true
	payload := rag.AnswerRequest{
		Query:        query,
		TopK:         5,
		PreloadLimit: 2000,
		IncludeMeta:  &includeMeta,
		Mode:         mode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call RAG API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("RAG API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var answer rag.AnswerResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &answer, nil
}
