package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/docparse"
)

// ScannedFile is one supported source file found under a corpus directory.
type ScannedFile struct {
	Path string
	Slug string
	// Title is the file name without extension, used as a default.
	Title string
}

// ScanDirectory walks dir and returns every supported document file, sorted
// by path. Hidden files and directories are skipped.
func ScanDirectory(dir string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !docparse.IsSupported(path) {
			return nil
		}

		title := strings.TrimSuffix(name, filepath.Ext(name))
		files = append(files, ScannedFile{
			Path:  path,
			Slug:  Slugify(title),
			Title: title,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Slugify turns an arbitrary title into a lowercase ASCII identifier.
// Cyrillic letters are transliterated; everything else non-alphanumeric
// collapses into single dashes.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case unicode.Is(unicode.Cyrillic, r):
			if t, ok := translit[r]; ok {
				b.WriteString(t)
				lastDash = false
			}
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}
