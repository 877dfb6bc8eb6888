package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// convertPPTX parses a .pptx upload by reading ppt/slides/slideN.xml from the
// ZIP archive. Each slide becomes one page section; the first text run of the
// first slide becomes the document title.
func convertPPTX(up Upload) (*Document, error) {
	r, err := zip.NewReader(bytes.NewReader(up.Data), int64(len(up.Data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	type slideFile struct {
		nr   int
		file *zip.File
	}
	var slides []slideFile
	for _, f := range r.File {
		m := slidePathRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		nr, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{nr: nr, file: f})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides found in archive")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].nr < slides[j].nr })

	var sections []Section
	var title string
	for _, s := range slides {
		text, err := extractSlideText(s.file)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", s.nr, err)
		}
		if text == "" {
			continue
		}
		if title == "" {
			title = firstLine(text)
		}
		sections = append(sections, Section{
			Text: text,
			Type: "page",
			Metadata: map[string]string{
				"slide": strconv.Itoa(s.nr),
			},
		})
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no text content found in presentation")
	}

	return &Document{
		Title:    title,
		Sections: sections,
		Pages:    len(slides),
	}, nil
}

// extractSlideText collects the <a:t> text runs of one slide, one line per
// paragraph (<a:p>).
func extractSlideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var sb strings.Builder
	var line strings.Builder
	var inText bool

	flushLine := func() {
		text := strings.TrimSpace(line.String())
		line.Reset()
		if text == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
				line.WriteByte(' ')
			case "p":
				flushLine()
			}
		}
	}
	flushLine()

	return sb.String(), nil
}
