package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	// Decoders for the supported image extensions.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// convertImage handles raster uploads. Text is only recoverable through OCR;
// without it the document carries a single placeholder section describing the
// image, mirroring how pictures are referenced inside converted PDFs.
func (p *standardPipeline) convertImage(ctx context.Context, up Upload, st Settings) (*Document, error) {
	img, format, err := image.Decode(bytes.NewReader(up.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()

	meta := map[string]string{
		"format": format,
		"width":  strconv.Itoa(bounds.Dx()),
		"height": strconv.Itoa(bounds.Dy()),
	}

	if !p.useOCR || p.engine == nil {
		return &Document{
			Title: up.Name,
			Sections: []Section{{
				Text:     fmt.Sprintf("[Image: %s (%dx%d %s)]", up.Name, bounds.Dx(), bounds.Dy(), format),
				Type:     "image",
				Metadata: meta,
			}},
			Pages: 1,
		}, nil
	}

	data := up.Data
	if st.ImageScale > 1 {
		if scaled, err := scaleImage(img, st.ImageScale); err == nil {
			data = scaled
		}
	}

	text, err := p.engine.Recognize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("ocr produced no text for %s", up.Name)
	}

	var sections []Section
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sections = append(sections, Section{
			Text:     para,
			Type:     "ocr",
			Metadata: meta,
		})
	}

	return &Document{
		Title:      firstLine(text),
		Sections:   sections,
		Pages:      1,
		OCRApplied: true,
	}, nil
}

// scaleImage resamples src by the given factor and re-encodes it as PNG.
// Higher resolution generally improves OCR accuracy on small scans.
func scaleImage(src image.Image, scale float64) ([]byte, error) {
	b := src.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid scaled dimensions %dx%d", w, h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode scaled image: %w", err)
	}
	return buf.Bytes(), nil
}

// rescaleForOCR decodes, scales and re-encodes an embedded image before OCR.
// On any failure the original bytes are used unchanged.
func rescaleForOCR(data []byte, scale float64) []byte {
	if scale <= 1 {
		return data
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	scaled, err := scaleImage(img, scale)
	if err != nil {
		return data
	}
	return scaled
}
