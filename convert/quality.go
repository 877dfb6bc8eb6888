package convert

import (
	"strings"
	"unicode"
)

// ExtractionQuality captures metrics about PDF text extraction quality. The
// standard pipeline uses it to decide whether the OCR fallback stage should
// run for a document.
type ExtractionQuality struct {
	PageCount       int     `json:"page_count" yaml:"page_count"`
	CharsPerPage    float64 `json:"chars_per_page" yaml:"chars_per_page"`
	PrintableRatio  float64 `json:"printable_ratio" yaml:"printable_ratio"`
	WordlikeRatio   float64 `json:"wordlike_ratio" yaml:"wordlike_ratio"`
	HasImageStreams bool    `json:"has_image_streams" yaml:"has_image_streams"`
}

// NeedsOCR returns true if the PDF likely needs OCR to recover its text:
// almost no extractable characters on image-bearing pages, or extracted text
// dominated by garbage glyphs.
func (q *ExtractionQuality) NeedsOCR() bool {
	return (q.CharsPerPage < 50 && q.HasImageStreams) || q.PrintableRatio < 0.85
}

// computePrintableRatio returns the ratio of printable characters in text.
// Excludes PUA U+E000-U+F8FF, control chars < U+0020 (except \n\r\t), U+FFFD.
func computePrintableRatio(text string) float64 {
	if len(text) == 0 {
		return 1.0
	}
	total := 0
	printable := 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	// Private Use Area
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	// Replacement character
	if r == 0xFFFD {
		return true
	}
	// Control chars except whitespace
	if r < 0x0020 && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	return false
}

// computeWordlikeRatio returns the ratio of word-like tokens (length 2-15) to
// total tokens.
func computeWordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		n := len([]rune(f))
		if n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
