package docparse

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/chunker"
)

var mdParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// ParseMarkdown parses markdown content into a flat block stream. Headings
// become heading blocks with their level; everything between headings is
// collapsed into paragraph blocks.
func ParseMarkdown(content []byte) ([]chunker.Block, error) {
	if len(content) == 0 {
		return nil, nil
	}

	reader := text.NewReader(content)
	doc := mdParser.Parser().Parse(reader)

	var blocks []chunker.Block
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			blocks = append(blocks, chunker.Block{
				Type:  chunker.BlockHeading,
				Level: n.Level,
				Text:  extractText(n, content),
			})
		default:
			txt := blockText(node, content)
			if txt == "" {
				continue
			}
			blocks = append(blocks, chunker.Block{
				Type: chunker.BlockParagraph,
				Text: txt,
			})
		}
	}
	return blocks, nil
}

// blockText renders a non-heading top-level node to plain text. Lists keep
// one item per line; tables keep one row per line with pipe separators.
func blockText(node ast.Node, content []byte) string {
	switch n := node.(type) {
	case *ast.List:
		var lines []string
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			itemText := extractText(item, content)
			if itemText != "" {
				lines = append(lines, itemText)
			}
		}
		return strings.Join(lines, "\n")
	case *ast.FencedCodeBlock:
		return codeBlockText(n.BaseBlock, content)
	case *ast.CodeBlock:
		return codeBlockText(n.BaseBlock, content)
	}

	if strings.Contains(node.Kind().String(), "Table") {
		return tableText(node, content)
	}
	return extractText(node, content)
}

func codeBlockText(block ast.BaseBlock, content []byte) string {
	var b strings.Builder
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(content))
	}
	return strings.TrimRight(b.String(), "\n")
}

func tableText(table ast.Node, content []byte) string {
	var rows []string
	_ = ast.Walk(table, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		kind := n.Kind().String()
		if strings.Contains(kind, "TableRow") || strings.Contains(kind, "TableHeader") {
			var cells []string
			for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, extractText(cell, content))
			}
			rows = append(rows, strings.Join(cells, " | "))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(rows, "\n")
}

// extractText collects the plain text of a node and its children.
func extractText(node ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
