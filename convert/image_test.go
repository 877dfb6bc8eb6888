package convert

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/visionparse/visionparse/config"
)

func buildPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestConvertImage_NoOCR(t *testing.T) {
	// WHAT: without OCR an image yields a single placeholder section.
	// WHY: text is not recoverable, but the document must still round-trip.
	data := buildPNG(t, 12, 8)
	up := Upload{Name: "scan.png", Size: int64(len(data)), Data: data}
	st := Settings{DocType: config.TypeImage, OutputFormat: config.FormatMarkdown}

	doc, err := ProcessDocument(context.Background(), up, st, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if doc.OCRApplied {
		t.Fatal("OCRApplied must be false without OCR")
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Type != "image" {
		t.Fatalf("sections: got %+v", doc.Sections)
	}
	if !strings.Contains(doc.Sections[0].Text, "scan.png") ||
		!strings.Contains(doc.Sections[0].Text, "12x8") {
		t.Fatalf("placeholder: got %q", doc.Sections[0].Text)
	}
	if doc.Sections[0].Metadata["format"] != "png" {
		t.Fatalf("format metadata: got %q", doc.Sections[0].Metadata["format"])
	}
	if doc.Pages != 1 {
		t.Fatalf("pages: got %d", doc.Pages)
	}
}

func TestConvertImage_BadData(t *testing.T) {
	up := Upload{Name: "noise.png", Size: 5, Data: []byte("nope!")}
	st := Settings{DocType: config.TypeImage, OutputFormat: config.FormatMarkdown}
	if _, err := ProcessDocument(context.Background(), up, st, config.Default()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestScaleImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 6))
	out, err := scaleImage(src, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	scaled, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	b := scaled.Bounds()
	if b.Dx() != 20 || b.Dy() != 12 {
		t.Fatalf("scaled bounds: got %dx%d, want 20x12", b.Dx(), b.Dy())
	}
}

func TestRescaleForOCR_FallsBackOnGarbage(t *testing.T) {
	data := []byte("not an image")
	if out := rescaleForOCR(data, 2.0); !bytes.Equal(out, data) {
		t.Fatal("garbage input must pass through unchanged")
	}
}
