// Package docparse reads source documents (DOCX, Markdown, plain text) into
// the flat block stream the chunker consumes.
package docparse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/chunker"
)

// SupportedExtensions lists the file extensions ParseFile accepts.
var SupportedExtensions = []string{".docx", ".md", ".markdown", ".txt"}

// IsSupported reports whether path has a parseable extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ParseFile reads the file at path and returns its blocks, dispatching on
// the file extension.
func ParseFile(path string) ([]chunker.Block, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return ParseDocxFile(path)
	case ".md", ".markdown":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read markdown file: %w", err)
		}
		return ParseMarkdown(content)
	case ".txt":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		return ParseText(string(content)), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

// ParseText splits plain text into paragraph blocks on blank lines.
// Plain text carries no heading structure.
func ParseText(content string) []chunker.Block {
	var blocks []chunker.Block
	for _, part := range strings.Split(content, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		blocks = append(blocks, chunker.Block{
			Type: chunker.BlockParagraph,
			Text: part,
		})
	}
	return blocks
}
