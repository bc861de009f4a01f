package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/contextutil"
)

// ManifestEntry describes one document listed in a corpus manifest.
type ManifestEntry struct {
	Slug     string `yaml:"slug"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle,omitempty"`
	Series   string `yaml:"series,omitempty"`
	DocType  string `yaml:"doc_type,omitempty"`
	Version  int    `yaml:"version,omitempty"`
	Language string `yaml:"language,omitempty"`
	File     string `yaml:"file"`
}

// Manifest lists the documents of a corpus.
type Manifest struct {
	Documents []ManifestEntry `yaml:"documents"`
}

// LoadManifest reads and validates a YAML manifest file. Relative document
// paths are resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(manifest.Documents) == 0 {
		return nil, fmt.Errorf("manifest %s lists no documents", path)
	}

	baseDir := filepath.Dir(path)
	seen := make(map[string]bool, len(manifest.Documents))
	for i, entry := range manifest.Documents {
		if entry.Slug == "" {
			return nil, fmt.Errorf("manifest entry %d has no slug", i+1)
		}
		if entry.File == "" {
			return nil, fmt.Errorf("manifest entry %q has no file", entry.Slug)
		}
		key := fmt.Sprintf("%s@%d", entry.Slug, entry.Version)
		if seen[key] {
			return nil, fmt.Errorf("duplicate manifest entry %q version %d", entry.Slug, entry.Version)
		}
		seen[key] = true

		if !filepath.IsAbs(entry.File) {
			manifest.Documents[i].File = filepath.Join(baseDir, entry.File)
		}
	}

	return &manifest, nil
}

// RunManifest ingests every document listed in the manifest, in order. It
// stops at the first failure.
func (p *Pipeline) RunManifest(ctx context.Context, manifest *Manifest) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	results := make([]Result, 0, len(manifest.Documents))
	for _, entry := range manifest.Documents {
		result, err := p.IngestDocument(ctx, DocumentInput{
			Path:     entry.File,
			Slug:     entry.Slug,
			Title:    entry.Title,
			Subtitle: entry.Subtitle,
			Series:   entry.Series,
			DocType:  entry.DocType,
			Version:  entry.Version,
			Language: entry.Language,
		})
		if err != nil {
			return results, fmt.Errorf("failed to ingest %q: %w", entry.Slug, err)
		}
		results = append(results, *result)
	}

	logger.InfoContext(ctx, "manifest ingested", "documents", len(results))
	return results, nil
}
