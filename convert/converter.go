// Package convert turns uploaded documents into a structured Document that the
// export package can serialize.
//
// Supported document types:
//   - pdf     : pdfcpu cross-reference + content stream extraction, optional OCR
//   - docx    : Microsoft Word (archive/zip → word/document.xml)
//   - xlsx    : Excel workbooks (archive/zip → xl/worksheets/sheetN.xml)
//   - pptx    : PowerPoint (archive/zip → ppt/slides/slideN.xml)
//   - html    : sanitized, structure-extracted, and rendered to markdown
//   - image   : raster images, text recoverable only via OCR
//   - markdown: goldmark AST
//   - asciidoc: line-based heading/paragraph parsing
//   - csv     : tabular passthrough
//
// A Converter bundles one pipeline per document type. Construction is keyed by
// the OCR flag and cached process-wide: repeated conversions with the same OCR
// setting reuse the same instance and never pay the setup cost twice.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/visionparse/visionparse/config"
)

// Pipeline converts uploads of the document types it accepts.
type Pipeline interface {
	Accepts(t config.DocumentType) bool
	Convert(ctx context.Context, up Upload, st Settings) (*Document, error)
}

// Converter dispatches conversions to per-format pipelines.
type Converter struct {
	useOCR    bool
	pipelines []Pipeline
	logger    *slog.Logger
}

// New creates a Converter for the given OCR setting. PDF and image inputs go
// through the standard pipeline (structural parse plus an OCR stage when
// enabled); formats with native structure go through the simple pipeline.
func New(useOCR bool) *Converter {
	return &Converter{
		useOCR: useOCR,
		pipelines: []Pipeline{
			newStandardPipeline(useOCR),
			newSimplePipeline(),
		},
		logger: slog.Default(),
	}
}

// UseOCR reports the OCR setting this converter was built with.
func (c *Converter) UseOCR() bool { return c.useOCR }

var (
	converterMu sync.Mutex
	converters  = map[bool]*Converter{}
)

// GetConverter returns the process-wide converter for the given OCR flag,
// constructing it on first request. For a fixed flag value every call returns
// the identical instance; the cache is keyed by the flag, not call order.
func GetConverter(useOCR bool) *Converter {
	converterMu.Lock()
	defer converterMu.Unlock()
	if c, ok := converters[useOCR]; ok {
		return c
	}
	c := New(useOCR)
	converters[useOCR] = c
	return c
}

// Ext returns the lowercase extension of name without the leading dot.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// DetectType returns the document type owning the filename's extension.
func DetectType(cfg *config.Config, name string) (config.DocumentType, error) {
	ext := Ext(name)
	for _, t := range cfg.Types() {
		if cfg.ExtensionAllowed(t, ext) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
}

// ProcessDocument validates the upload against the configured limits and then
// delegates to the cached converter for the requested OCR setting. Validation
// failures return before any parser runs; parser failures come back wrapped in
// a ConversionError and are never retried.
func ProcessDocument(ctx context.Context, up Upload, st Settings, cfg *config.Config) (*Document, error) {
	if _, ok := cfg.SupportedTypes[st.DocType]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, st.DocType)
	}
	ext := Ext(up.Name)
	if !cfg.ExtensionAllowed(st.DocType, ext) {
		return nil, fmt.Errorf("%w: .%s is not a %s extension", ErrExtensionMismatch, ext, st.DocType)
	}
	if !cfg.FormatAllowed(st.OutputFormat) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutputFormat, st.OutputFormat)
	}
	if up.Size > cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d bytes)", ErrFileTooLarge, up.Size, cfg.MaxFileSize)
	}

	// Page limit is enforced only where the count is cheaply knowable before
	// full conversion. A count failure here is not fatal: a broken PDF will
	// fail in the pipeline with a proper ConversionError.
	if st.DocType == config.TypePDF {
		if pages, err := CountPDFPages(up.Data); err == nil && pages > cfg.MaxPages {
			return nil, fmt.Errorf("%w: %d pages (max %d)", ErrTooManyPages, pages, cfg.MaxPages)
		}
	}

	return GetConverter(st.OCR).Convert(ctx, up, st)
}

// Convert runs the pipeline accepting the settings' document type.
func (c *Converter) Convert(ctx context.Context, up Upload, st Settings) (*Document, error) {
	var pipe Pipeline
	for _, p := range c.pipelines {
		if p.Accepts(st.DocType) {
			pipe = p
			break
		}
	}
	if pipe == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, st.DocType)
	}

	c.logger.Debug("converting document", "name", up.Name, "type", st.DocType, "ocr", c.useOCR)

	doc, err := pipe.Convert(ctx, up, st)
	if err != nil {
		return nil, &ConversionError{Name: up.Name, Err: err}
	}
	doc.Name = up.Name
	doc.DocType = st.DocType
	return doc, nil
}
