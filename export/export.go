// Package export serializes converted documents into the downloadable
// output formats: markdown, JSON and YAML.
package export

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/visionparse/visionparse/config"
	"github.com/visionparse/visionparse/convert"
)

// FormatError reports a failure to serialize a document into an output
// format.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %s: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Result is a serialized document ready to be written to a client.
type Result struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ByFormat serializes doc into the requested output format. The format must
// already have been validated against the configured format list.
func ByFormat(doc *convert.Document, format string) (*Result, error) {
	switch format {
	case config.FormatMarkdown:
		return &Result{
			Content:     []byte(Markdown(doc)),
			ContentType: "text/markdown; charset=utf-8",
			Filename:    Filename(doc.Name, format),
		}, nil
	case config.FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, &FormatError{Format: format, Err: err}
		}
		return &Result{
			Content:     data,
			ContentType: "application/json",
			Filename:    Filename(doc.Name, format),
		}, nil
	case config.FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, &FormatError{Format: format, Err: err}
		}
		return &Result{
			Content:     data,
			ContentType: "application/yaml",
			Filename:    Filename(doc.Name, format),
		}, nil
	}
	return nil, &FormatError{Format: format, Err: fmt.Errorf("unknown output format")}
}

// Markdown renders the document as a markdown string. Formats that produce a
// markdown body directly (HTML) keep it; everything else is rendered from
// the section list.
func Markdown(doc *convert.Document) string {
	if doc.Markdown != "" {
		return markdownHeader(doc) + doc.Markdown
	}

	var sb strings.Builder
	sb.WriteString(markdownHeader(doc))
	for _, sec := range doc.Sections {
		switch sec.Type {
		case "heading":
			level := sec.Level
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			sb.WriteString(strings.Repeat("#", level))
			sb.WriteByte(' ')
			sb.WriteString(sec.Title)
		case "page", "ocr":
			if page := sec.Metadata["page"]; page != "" {
				fmt.Fprintf(&sb, "## Page %s\n\n", page)
			} else if slide := sec.Metadata["slide"]; slide != "" {
				fmt.Fprintf(&sb, "## Slide %s\n\n", slide)
			}
			sb.WriteString(sec.Text)
		case "table":
			if sec.Title != "" {
				fmt.Fprintf(&sb, "## %s\n\n", sec.Title)
			}
			sb.WriteString(sec.Text)
		case "code":
			sb.WriteString("```\n")
			sb.WriteString(sec.Text)
			sb.WriteString("\n```")
		case "list":
			for _, line := range strings.Split(sec.Text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
						sb.WriteString("- ")
					}
					sb.WriteString(line)
					sb.WriteByte('\n')
				}
			}
			sb.WriteString("\n")
			continue
		default:
			sb.WriteString(sec.Text)
		}
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func markdownHeader(doc *convert.Document) string {
	if doc.Title == "" {
		return ""
	}
	// A first heading-typed section already renders the title.
	if len(doc.Sections) > 0 && doc.Sections[0].Type == "heading" && doc.Sections[0].Title == doc.Title {
		return ""
	}
	return "# " + doc.Title + "\n\n"
}

// Filename derives the download filename from the uploaded name by swapping
// its extension for the output format's.
func Filename(name, format string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	if base == "" || base == "." {
		base = "document"
	}
	switch format {
	case config.FormatJSON:
		return base + ".json"
	case config.FormatYAML:
		return base + ".yaml"
	default:
		return base + ".md"
	}
}
