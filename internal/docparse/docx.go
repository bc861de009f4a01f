package docparse

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/chunker"
)

// headingStyleRe matches Word heading style identifiers in English and
// Russian document templates ("Heading 1", "Heading1", "Заголовок 1").
var headingStyleRe = regexp.MustCompile(`(?i)^(?:heading|заголовок)\s*([1-9])$`)

// ParseDocxFile opens a .docx file and returns its paragraphs as blocks.
func ParseDocxFile(path string) ([]chunker.Block, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	return parseDocxZip(&zr.Reader)
}

// ParseDocx reads a .docx document from an in-memory or seekable source.
func ParseDocx(r io.ReaderAt, size int64) ([]chunker.Block, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read docx archive: %w", err)
	}
	return parseDocxZip(zr)
}

func parseDocxZip(zr *zip.Reader) ([]chunker.Block, error) {
	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("docx archive has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	return parseDocumentXML(rc)
}

// parseDocumentXML streams through WordprocessingML and emits one block per
// non-empty w:p paragraph. The paragraph style decides whether the block is
// a heading and at which level.
func parseDocumentXML(r io.Reader) ([]chunker.Block, error) {
	dec := xml.NewDecoder(r)

	var blocks []chunker.Block
	var text strings.Builder
	var style string
	inParagraph := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				style = ""
				text.Reset()
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						style = attr.Value
					}
				}
			case "t":
				if inParagraph {
					var runText string
					if err := dec.DecodeElement(&runText, &t); err != nil {
						return nil, fmt.Errorf("failed to decode text run: %w", err)
					}
					text.WriteString(runText)
				}
			case "tab":
				if inParagraph {
					text.WriteByte(' ')
				}
			case "br":
				if inParagraph {
					text.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Local != "p" || !inParagraph {
				continue
			}
			inParagraph = false

			paragraph := strings.TrimSpace(text.String())
			if paragraph == "" {
				continue
			}

			if level, ok := detectHeadingLevel(style); ok {
				blocks = append(blocks, chunker.Block{
					Type:  chunker.BlockHeading,
					Level: level,
					Text:  paragraph,
				})
			} else {
				blocks = append(blocks, chunker.Block{
					Type: chunker.BlockParagraph,
					Text: paragraph,
				})
			}
		}
	}
	return blocks, nil
}

func detectHeadingLevel(style string) (int, bool) {
	m := headingStyleRe.FindStringSubmatch(strings.TrimSpace(style))
	if m == nil {
		return 0, false
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return level, true
}
