// Package retrieval ranks stored chunks against a query by cosine
// similarity. Stored vectors arrive in whatever form the storage layer kept
// them in (a native numeric slice or a JSON-encoded string); they are
// normalized once, at the top of scoring, and never inside the similarity
// math.
package retrieval

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sort"
)

// QualityOK marks a candidate as acceptable for scoring.
const QualityOK = "ok"

// Candidate is a stored chunk considered during a retrieval query.
// Embedding is opaque: []float64, []float32, []any of numbers, or a string
// holding a JSON array. QualityFlag may be empty for in-memory pools, which
// counts as acceptable.
type Candidate struct {
	ID          string
	DocumentID  string
	Text        string
	Embedding   any
	QualityFlag string
}

// ScoredChunk pairs a candidate with its similarity score. The candidate is
// embedded so its fields read directly off the scored result.
type ScoredChunk struct {
	Candidate
	Score float64
}

// NormalizeEmbedding converts a stored vector representation into a float64
// slice. It reports false for anything that is not, or does not strictly
// decode to, a numeric sequence; such candidates are skipped by scoring
// rather than surfaced as errors.
func NormalizeEmbedding(raw any) ([]float64, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []float64:
		return v, true
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, true
	case []any:
		out := make([]float64, len(v))
		for i, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	case string:
		var out []float64
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, false
		}
		return out, true
	case []byte:
		var out []float64
		if err := json.Unmarshal(v, &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// CosineSimilarity returns the cosine of the angle between a and b: their
// dot product divided by the product of their Euclidean norms. A zero norm
// or mismatched dimensions yield 0.0, never an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0.0 {
		return 0.0
	}
	return dot / denom
}

// ScoreBySimilarity scores every candidate against the query vector and
// returns the pairs sorted by score descending. Candidates with an absent,
// undecodable, or empty embedding and candidates whose quality flag is set
// to anything but "ok" are silently excluded. The sort is stable, so equal
// scores keep their encounter order.
func ScoreBySimilarity(query []float64, candidates []Candidate) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(candidates))

	for _, c := range candidates {
		if c.QualityFlag != "" && c.QualityFlag != QualityOK {
			continue
		}
		vec, ok := NormalizeEmbedding(c.Embedding)
		if !ok || len(vec) == 0 {
			continue
		}
		scored = append(scored, ScoredChunk{
			Candidate: c,
			Score:     CosineSimilarity(query, vec),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Embedder turns a query string into a vector. Failures propagate to the
// caller unchanged; the retriever owns no retry policy.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// Retriever produces top-k rankings of candidate pools for natural-language
// queries. It is stateless and safe for concurrent use.
type Retriever struct {
	embedder Embedder
	logger   *slog.Logger
}

// New creates a Retriever backed by the given embedder.
func New(embedder Embedder) *Retriever {
	return &Retriever{
		embedder: embedder,
		logger:   slog.Default(),
	}
}

// TopK embeds the query once, scores the whole pool, and returns the k
// best-scoring chunks in descending score order. An empty pool, an empty
// scorable subset, or k <= 0 yield an empty result, never an error; k larger
// than the scorable set returns everything scorable.
func (r *Retriever) TopK(ctx context.Context, query string, pool []Candidate, k int) ([]ScoredChunk, error) {
	if len(pool) == 0 || k <= 0 {
		return []ScoredChunk{}, nil
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	scored := ScoreBySimilarity(queryVec, pool)
	if len(scored) > k {
		scored = scored[:k]
	}

	r.logger.DebugContext(ctx, "retrieval complete",
		"pool_size", len(pool),
		"k", k,
		"results", len(scored),
	)
	return scored, nil
}
