// Package chunker turns the flat block sequence of a parsed document into
// H1-anchored sections and bounded, title-prefixed text chunks ready for
// embedding.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChars is the soft upper bound on chunk body length.
	DefaultMaxChars = 1200
	// DefaultMinChars is the lower bound below which a trailing buffer is
	// merged into the previous chunk instead of being emitted standalone.
	DefaultMinChars = 600

	// FallbackTitle is used for a headless, otherwise empty document.
	FallbackTitle = "FULL_DOCUMENT"

	separator = "\n\n"
)

// BlockType distinguishes headings from body paragraphs.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
)

// Block is one unit of source content produced by a document reader.
// Level is the heading nesting level (1 = top-level) and is zero for
// paragraphs.
type Block struct {
	Type  BlockType
	Level int
	Text  string
}

// Section is a contiguous run of blocks under one top-level heading, or the
// whole document as a fallback when no top-level heading exists.
type Section struct {
	// Index is 1-based and assigned in encounter order.
	Index int
	// Title is the heading text, or a document-derived fallback.
	Title string
	// HeadingBlock is the originating heading; nil for the fallback case
	// and for a preamble section that precedes the first heading.
	HeadingBlock *Block
	// Blocks holds every block of the section, heading included.
	Blocks []Block
}

// SplitIntoSections splits an ordered block sequence into sections.
//
// Every block with heading level 1 opens a new section; paragraphs and
// deeper headings are kept as in-section structure. When the input contains
// no level-1 heading at all, the whole document collapses into a single
// fallback section titled after the first block. Sections partition the
// input exactly, in order, with dense 1-based indices.
func SplitIntoSections(blocks []Block) []Section {
	var sections []Section
	hasH1 := false

	var current []Block
	var currentTitle string
	var currentHeading *Block

	appendSection := func(title string, heading *Block, blocks []Block) {
		sections = append(sections, Section{
			Index:        len(sections) + 1,
			Title:        title,
			HeadingBlock: heading,
			Blocks:       blocks,
		})
	}

	for _, block := range blocks {
		if block.Type == BlockHeading && block.Level == 1 {
			hasH1 = true

			// close the previous section, if any
			if len(current) > 0 {
				appendSection(currentTitle, currentHeading, current)
			}

			heading := block
			currentHeading = &heading
			currentTitle = strings.TrimSpace(block.Text)
			if currentTitle == "" {
				currentTitle = fmt.Sprintf("Section %d", len(sections)+1)
			}
			current = []Block{block}
			continue
		}

		current = append(current, block)
	}

	if len(current) > 0 {
		if hasH1 {
			appendSection(currentTitle, currentHeading, current)
		} else {
			// no H1 anywhere: the whole document is one section
			title := strings.TrimSpace(blocks[0].Text)
			if title == "" {
				title = FallbackTitle
			}
			sections = []Section{{
				Index:  1,
				Title:  title,
				Blocks: blocks,
			}}
		}
	}

	return sections
}

// BuildChunksForSection accumulates the section's body texts into chunks of
// at most maxChars, each prefixed with the section title so a chunk read in
// isolation keeps its structural context. A trailing buffer shorter than
// minChars is glued onto the previous chunk instead of being emitted as an
// orphan fragment. A single block longer than maxChars is emitted whole,
// never split.
func BuildChunksForSection(section Section, maxChars, minChars int) []string {
	header := strings.TrimSpace(section.Title)

	var pieces []string
	for _, b := range section.Blocks {
		// the H1 already appears as the chunk header prefix
		if b.Type == BlockHeading && b.Level == 1 {
			continue
		}
		txt := strings.TrimSpace(b.Text)
		if txt == "" {
			continue
		}
		pieces = append(pieces, txt)
	}

	if len(pieces) == 0 {
		// empty section: a single header-only chunk, or nothing at all
		if header != "" {
			return []string{header}
		}
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		body := strings.Join(current, separator)
		if header != "" {
			chunks = append(chunks, header+separator+body)
		} else {
			chunks = append(chunks, body)
		}
		current = nil
		currentLen = 0
	}

	for _, piece := range pieces {
		// sizes are measured in runes, not bytes, so Cyrillic text is not
		// penalized by its UTF-8 encoding
		extra := utf8.RuneCountInString(piece)
		if len(current) > 0 {
			extra += len(separator)
		}
		if currentLen+extra > maxChars && len(current) > 0 {
			flush()
			extra = utf8.RuneCountInString(piece)
		}
		current = append(current, piece)
		currentLen += extra
	}

	if len(current) > 0 {
		tail := strings.Join(current, separator)
		if len(chunks) > 0 && utf8.RuneCountInString(tail) < minChars {
			chunks[len(chunks)-1] += separator + tail
		} else {
			flush()
		}
	}

	return chunks
}

// BuildChunks applies the default size bounds.
func BuildChunks(section Section) []string {
	return BuildChunksForSection(section, DefaultMaxChars, DefaultMinChars)
}
