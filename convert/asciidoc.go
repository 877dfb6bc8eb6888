package convert

import (
	"fmt"
	"strings"
	"unicode"
)

// convertAsciiDoc parses an AsciiDoc upload line by line. Section titles use
// "=" markers (= Title, == Section, ...); the document title is the first
// level-1 heading, falling back to the first section's text.
func convertAsciiDoc(up Upload) (*Document, error) {
	lines := strings.Split(string(up.Data), "\n")

	var sections []Section
	var title string
	var current strings.Builder
	inListing := false

	flush := func(kind string) {
		text := strings.TrimSpace(current.String())
		if text != "" {
			sections = append(sections, Section{Text: text, Type: kind})
		}
		current.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Listing/literal block delimiters keep their content verbatim.
		if trimmed == "----" || trimmed == "...." {
			if inListing {
				flush("code")
			} else {
				flush("paragraph")
			}
			inListing = !inListing
			continue
		}
		if inListing {
			if current.Len() > 0 {
				current.WriteByte('\n')
			}
			current.WriteString(line)
			continue
		}

		// Comments and document attributes carry no content.
		if strings.HasPrefix(trimmed, "//") || isAsciiDocAttribute(trimmed) {
			continue
		}

		if level, heading := asciiDocHeading(trimmed); level > 0 {
			flush("paragraph")
			if title == "" {
				title = heading
			}
			sections = append(sections, Section{
				Title: heading,
				Level: level,
				Text:  heading,
				Type:  "heading",
			})
			continue
		}

		if trimmed == "" {
			flush("paragraph")
			continue
		}

		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(trimmed)
	}
	flush("paragraph")

	if len(sections) == 0 {
		return nil, fmt.Errorf("no content found in asciidoc")
	}
	if title == "" {
		title = firstLine(sections[0].Text)
	}

	return &Document{Title: title, Sections: sections}, nil
}

// asciiDocHeading reports the heading level and text of a "= Title" line,
// or level 0 when the line is not a heading.
func asciiDocHeading(line string) (int, string) {
	if !strings.HasPrefix(line, "=") {
		return 0, ""
	}
	level := 0
	for _, ch := range line {
		if ch == '=' {
			level++
		} else {
			break
		}
	}
	if level > 6 {
		return 0, ""
	}
	rest := line[level:]
	if rest == "" || rest[0] != ' ' {
		return 0, ""
	}
	text := strings.TrimSpace(rest)
	if text == "" {
		return 0, ""
	}
	return level, text
}

// isAsciiDocAttribute reports whether the line is a document attribute
// definition such as ":toc:" or ":author: Jane".
func isAsciiDocAttribute(line string) bool {
	if len(line) < 3 || line[0] != ':' {
		return false
	}
	end := strings.IndexByte(line[1:], ':')
	return end > 0
}

func normalizeWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
