package convert

import "github.com/visionparse/visionparse/config"

// Section is a structural unit of a converted document.
type Section struct {
	Title    string            `json:"title,omitempty" yaml:"title,omitempty"`
	Level    int               `json:"level" yaml:"level"`                         // heading level 1-6, 0 for body
	Text     string            `json:"text" yaml:"text"`                           // extracted text content
	Type     string            `json:"type" yaml:"type"`                           // heading, paragraph, table, list, page, image
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"` // extra attributes (page number, slide number...)
}

// Document is the result of converting an upload. Callers downstream of the
// converter treat it as read-only and only hand it to the export package.
type Document struct {
	Name     string              `json:"name" yaml:"name"`
	DocType  config.DocumentType `json:"doc_type" yaml:"doc_type"`
	Title    string              `json:"title" yaml:"title"`
	Sections []Section           `json:"sections" yaml:"sections"`

	// Pages is the page (or slide) count where the format has one, 0 otherwise.
	Pages int `json:"pages" yaml:"pages"`

	// Markdown is a pre-rendered markdown body for formats whose parser
	// produces one directly (HTML). Empty for section-only formats.
	Markdown string `json:"-" yaml:"-"`

	// OCRApplied records whether an OCR stage contributed text.
	OCRApplied bool `json:"ocr_applied" yaml:"ocr_applied"`

	// Quality carries PDF extraction quality metrics, nil for other formats.
	Quality *ExtractionQuality `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// Settings are the user-chosen options for a single conversion request.
type Settings struct {
	DocType      config.DocumentType
	OutputFormat string
	OCR          bool
	ImageScale   float64
}

// Upload is an uploaded file held in memory. Size is the byte length as
// reported by the transport, used for the pre-conversion size check.
type Upload struct {
	Name string
	Size int64
	Data []byte
}
