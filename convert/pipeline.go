package convert

import (
	"context"
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/visionparse/visionparse/config"
)

// standardPipeline handles formats that require layout analysis: PDF and
// raster images. When OCR is enabled it carries a Tesseract engine used as a
// fallback for image-heavy PDFs and as the only text source for images.
type standardPipeline struct {
	useOCR bool
	engine *TesseractEngine
}

func newStandardPipeline(useOCR bool) *standardPipeline {
	p := &standardPipeline{useOCR: useOCR}
	if useOCR {
		p.engine = NewTesseractEngine("eng")
	}
	return p
}

func (p *standardPipeline) Accepts(t config.DocumentType) bool {
	return t == config.TypePDF || t == config.TypeImage
}

func (p *standardPipeline) Convert(ctx context.Context, up Upload, st Settings) (*Document, error) {
	switch st.DocType {
	case config.TypePDF:
		return p.convertPDF(ctx, up, st)
	case config.TypeImage:
		return p.convertImage(ctx, up, st)
	default:
		return nil, fmt.Errorf("standard pipeline: no parser for %q", st.DocType)
	}
}

// simplePipeline handles formats with native structure: DOCX, XLSX, PPTX,
// HTML, Markdown, AsciiDoc, CSV. No OCR stage is involved, so one instance
// serves both converter variants identically.
type simplePipeline struct {
	sanitizer *bluemonday.Policy
	md        *converter.Converter
}

func newSimplePipeline() *simplePipeline {
	return &simplePipeline{
		sanitizer: bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (p *simplePipeline) Accepts(t config.DocumentType) bool {
	switch t {
	case config.TypeDocx, config.TypeXLSX, config.TypePPTX, config.TypeHTML,
		config.TypeMarkdown, config.TypeAsciiDoc, config.TypeCSV:
		return true
	}
	return false
}

func (p *simplePipeline) Convert(_ context.Context, up Upload, st Settings) (*Document, error) {
	switch st.DocType {
	case config.TypeDocx:
		return convertDocx(up)
	case config.TypeXLSX:
		return convertXLSX(up)
	case config.TypePPTX:
		return convertPPTX(up)
	case config.TypeHTML:
		return p.convertHTML(up)
	case config.TypeMarkdown:
		return convertMarkdown(up)
	case config.TypeAsciiDoc:
		return convertAsciiDoc(up)
	case config.TypeCSV:
		return convertCSV(up)
	default:
		return nil, fmt.Errorf("simple pipeline: no parser for %q", st.DocType)
	}
}
