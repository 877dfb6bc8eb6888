package convert

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var mdParser = goldmark.New(goldmark.WithExtensions(extension.GFM))

// convertMarkdown parses a Markdown upload with goldmark and flattens the
// block-level AST into sections. The first heading becomes the title.
func convertMarkdown(up Upload) (*Document, error) {
	source := up.Data
	root := mdParser.Parser().Parse(text.NewReader(source))

	var sections []Section
	var title string

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch b := n.(type) {
		case *ast.Heading:
			t := blockText(b, source)
			if t == "" {
				continue
			}
			if title == "" {
				title = t
			}
			sections = append(sections, Section{
				Title: t,
				Level: b.Level,
				Text:  t,
				Type:  "heading",
			})

		case *ast.Paragraph, *ast.TextBlock:
			if t := blockText(n, source); t != "" {
				sections = append(sections, Section{Text: t, Type: "paragraph"})
			}

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if t := blockText(n, source); t != "" {
				sections = append(sections, Section{Text: t, Type: "code"})
			}

		case *ast.List:
			if t := containerText(n, source); t != "" {
				sections = append(sections, Section{Text: t, Type: "list"})
			}

		case *ast.Blockquote:
			if t := containerText(n, source); t != "" {
				sections = append(sections, Section{Text: t, Type: "paragraph"})
			}

		default:
			// Tables and other extension blocks: flatten to text.
			if t := containerText(n, source); t != "" {
				sections = append(sections, Section{Text: t, Type: "table"})
			}
		}
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no content found in markdown")
	}
	if title == "" {
		title = firstLine(sections[0].Text)
	}

	return &Document{Title: title, Sections: sections}, nil
}

// blockText joins the raw source lines of a single block node.
func blockText(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.Write(seg.Value(source))
	}
	return strings.TrimSpace(sb.String())
}

// containerText flattens a container node (list, blockquote, table) into one
// newline-joined string of its leaf blocks.
func containerText(n ast.Node, source []byte) string {
	var parts []string
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			if t := blockText(n, source); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, "\n")
}
