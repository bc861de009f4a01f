package rag

// QueryRequest represents a raw retrieval request.
type QueryRequest struct {
	// Query is the user's search text.
	Query string `json:"query"`
	// Slug optionally restricts retrieval to one book.
	Slug string `json:"slug,omitempty"`
	// Slugs optionally restricts retrieval to several books.
	Slugs []string `json:"slugs,omitempty"`
	// TopK is the number of chunks to return. Defaults to 5.
	TopK int `json:"top_k,omitempty"`
	// PreloadLimit caps how many candidate chunks are loaded for scoring.
	// Defaults to 2000.
	PreloadLimit int `json:"preload_limit,omitempty"`
	// IncludeMeta adds book title, series, and author to each result.
	IncludeMeta bool `json:"include_meta,omitempty"`
}

// QueryResult is one scored chunk in a query response.
type QueryResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	// Text is the chunk text truncated for preview.
	Text       string  `json:"text"`
	BookTitle  string  `json:"book_title,omitempty"`
	BookSeries string  `json:"book_series,omitempty"`
	Author     string  `json:"author,omitempty"`
}

// QueryResponse represents the response to a raw retrieval request.
type QueryResponse struct {
	Count   int           `json:"count"`
	Results []QueryResult `json:"results"`
}

// AnswerRequest represents a question to answer over the book corpus.
type AnswerRequest struct {
	Query        string   `json:"query"`
	Slug         string   `json:"slug,omitempty"`
	Slugs        []string `json:"slugs,omitempty"`
	TopK         int      `json:"top_k,omitempty"`
	PreloadLimit int      `json:"preload_limit,omitempty"`
	// IncludeMeta controls whether citations are returned. Absent means true.
	IncludeMeta *bool `json:"include_meta,omitempty"`
	// Mode selects the answer style. Defaults to ModeSynthesis.
	Mode string `json:"mode,omitempty"`
}

// Citation identifies a source chunk an answer was built from.
type Citation struct {
	Index      int     `json:"index"`
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	BookTitle  string  `json:"book_title"`
	BookSeries string  `json:"book_series"`
	Author     string  `json:"author"`
}

// AnswerResponse represents the generated answer with its sources.
type AnswerResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}
