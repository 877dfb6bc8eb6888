package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// CountPDFPages returns the page count of a PDF without running extraction.
// Used for the pre-conversion page limit check.
func CountPDFPages(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}

// convertPDF extracts text page by page via pdfcpu content streams. When the
// converter was built with OCR and the extraction quality indicates a scanned
// or image-heavy document, embedded page images are run through the OCR engine
// as a fallback text source.
func (p *standardPipeline) convertPDF(ctx context.Context, up Upload, st Settings) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(up.Data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	title, sections, quality := extractPDFContent(pdfCtx)

	ocrApplied := false
	if p.useOCR && p.engine != nil && quality.NeedsOCR() {
		ocrSections, ocrErr := p.ocrPDFImages(ctx, pdfCtx, st.ImageScale)
		if ocrErr != nil {
			slog.Debug("pdf ocr stage failed", "name", up.Name, "error", ocrErr)
		}
		if len(ocrSections) > 0 {
			sections = append(sections, ocrSections...)
			ocrApplied = true
			if title == "" {
				title = firstLine(ocrSections[0].Text)
			}
		}
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no text content found in PDF")
	}

	return &Document{
		Title:      title,
		Sections:   sections,
		Pages:      pdfCtx.PageCount,
		OCRApplied: ocrApplied,
		Quality:    quality,
	}, nil
}

// extractPDFContent walks all pages and returns title, per-page sections and
// quality metrics. Pages without extractable text are skipped.
func extractPDFContent(pdfCtx *model.Context) (string, []Section, *ExtractionQuality) {
	var allText strings.Builder
	var sections []Section
	var title string
	totalChars := 0

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		pageText := extractPageText(pdfCtx, pageNr)
		if pageText == "" {
			continue
		}

		totalChars += len([]rune(pageText))

		if title == "" {
			title = firstLine(pageText)
		}

		sections = append(sections, Section{
			Text: pageText,
			Type: "page",
			Metadata: map[string]string{
				"page": strconv.Itoa(pageNr),
			},
		})

		if allText.Len() > 0 {
			allText.WriteByte('\n')
		}
		allText.WriteString(pageText)
	}

	fullText := allText.String()
	var charsPerPage float64
	if pdfCtx.PageCount > 0 {
		charsPerPage = float64(totalChars) / float64(pdfCtx.PageCount)
	}

	quality := &ExtractionQuality{
		PageCount:       pdfCtx.PageCount,
		CharsPerPage:    charsPerPage,
		PrintableRatio:  computePrintableRatio(fullText),
		WordlikeRatio:   computeWordlikeRatio(fullText),
		HasImageStreams: detectImageStreams(pdfCtx),
	}

	return title, sections, quality
}

// extractPageText extracts text from a single PDF page content stream.
func extractPageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractTextFromStream(data)
}

// ocrPDFImages runs the OCR engine over the images embedded in each page and
// returns one section per image that yielded text.
func (p *standardPipeline) ocrPDFImages(ctx context.Context, pdfCtx *model.Context, scale float64) ([]Section, error) {
	var sections []Section
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		select {
		case <-ctx.Done():
			return sections, ctx.Err()
		default:
		}

		images, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
		if err != nil {
			continue
		}
		for _, img := range images {
			data, err := io.ReadAll(img)
			if err != nil || len(data) == 0 {
				continue
			}
			data = rescaleForOCR(data, scale)
			text, err := p.engine.Recognize(ctx, data)
			if err != nil || text == "" {
				continue
			}
			sections = append(sections, Section{
				Text: text,
				Type: "ocr",
				Metadata: map[string]string{
					"page": strconv.Itoa(pageNr),
				},
			})
		}
	}
	return sections, nil
}

// detectImageStreams checks if the PDF contains image XObjects.
func detectImageStreams(pdfCtx *model.Context) bool {
	if pdfCtx.Optimize != nil {
		for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(pdfCtx, pageNr)) > 0 {
				return true
			}
		}
	}
	// Fallback: scan the xref table for image subtype stream dicts.
	for _, entry := range pdfCtx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// pdfStringRe matches PDF string literals in parentheses, including escaped
// delimiters inside: (text here), (see \(note\))
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^)\\])*)\)`)

// extractTextFromStream parses PDF content stream operators for text.
func extractTextFromStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Tj / TJ operators: (text) Tj, [(text) -100 (more)] TJ
		if bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteString(text)
				}
			}
		}

		// ' operator (move to next line and show text): (text) '
		if bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteByte('\n')
					sb.WriteString(text)
				}
			}
		}

		// Td/TD positioning operators separate runs.
		if bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")) {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		}

		// T* moves to the start of the next line.
		if bytes.Equal(line, []byte("T*")) {
			sb.WriteByte('\n')
		}
	}

	return cleanPDFText(sb.String())
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				// Octal escape (e.g. \040 for space).
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
						i++
						val = val*8 + int(raw[i]-'0')
						if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
							i++
							val = val*8 + int(raw[i]-'0')
						}
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else {
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

// cleanPDFText normalises whitespace in extracted PDF text.
func cleanPDFText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
