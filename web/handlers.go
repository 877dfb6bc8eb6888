package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/visionparse/visionparse/config"
	"github.com/visionparse/visionparse/convert"
	"github.com/visionparse/visionparse/export"
	"github.com/visionparse/visionparse/shield"
)

// configResponse is the payload of GET /api/config, consumed by the frontend
// to build its selectors.
type configResponse struct {
	Types             []typeInfo `json:"types"`
	OutputFormats     []string   `json:"output_formats"`
	MaxPages          int        `json:"max_pages"`
	MaxFileSize       int64      `json:"max_file_size"`
	DefaultImageScale float64    `json:"default_image_scale"`
}

type typeInfo struct {
	Type       config.DocumentType `json:"type"`
	Extensions []string            `json:"extensions"`
	ImageScale bool                `json:"image_scale"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	resp := configResponse{
		OutputFormats:     s.cfg.OutputFormats,
		MaxPages:          s.cfg.MaxPages,
		MaxFileSize:       s.cfg.MaxFileSize,
		DefaultImageScale: s.cfg.DefaultImageScale,
	}
	for _, t := range s.cfg.Types() {
		resp.Types = append(resp.Types, typeInfo{
			Type:       t,
			Extensions: s.cfg.SupportedTypes[t],
			ImageScale: s.cfg.SupportsImageScale(t),
		})
	}
	writeJSON(w, 200, resp)
}

// errInvalidRequest marks requests the client can fix: a malformed form,
// a missing file part, a bad field value. Maps to 400 at the boundary.
var errInvalidRequest = errors.New("invalid conversion request")

// parseRequest reads the multipart form of a conversion request: the file
// part plus the doc_type, output_format, ocr and image_scale fields. An empty
// doc_type is detected from the filename extension.
func (s *Server) parseRequest(r *http.Request) (convert.Upload, convert.Settings, error) {
	var up convert.Upload
	var st convert.Settings

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return up, st, fmt.Errorf("%w: parse multipart form: %v", errInvalidRequest, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return up, st, fmt.Errorf("%w: missing file part", errInvalidRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return up, st, fmt.Errorf("read upload: %w", err)
	}
	up = convert.Upload{Name: header.Filename, Size: int64(len(data)), Data: data}

	if v := r.FormValue("doc_type"); v != "" {
		st.DocType = config.DocumentType(v)
	} else {
		st.DocType, err = convert.DetectType(s.cfg, header.Filename)
		if err != nil {
			return up, st, err
		}
	}

	st.OutputFormat = r.FormValue("output_format")
	if st.OutputFormat == "" {
		st.OutputFormat = config.FormatMarkdown
	}

	switch r.FormValue("ocr") {
	case "true", "on", "1":
		st.OCR = true
	}

	st.ImageScale = s.cfg.DefaultImageScale
	if v := r.FormValue("image_scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			return up, st, fmt.Errorf("%w: image_scale %q is not a positive number", errInvalidRequest, v)
		}
		st.ImageScale = scale
	}

	return up, st, nil
}

// convertResponse is the preview payload of POST /api/convert.
type convertResponse struct {
	Filename    string                     `json:"filename"`
	ContentType string                     `json:"content_type"`
	Content     string                     `json:"content"`
	Title       string                     `json:"title"`
	DocType     config.DocumentType        `json:"doc_type"`
	Pages       int                        `json:"pages"`
	Sections    int                        `json:"sections"`
	OCRApplied  bool                       `json:"ocr_applied"`
	Quality     *convert.ExtractionQuality `json:"quality,omitempty"`
}

func (s *Server) convert(r *http.Request) (*convert.Document, *export.Result, error) {
	up, st, err := s.parseRequest(r)
	if err != nil {
		return nil, nil, err
	}

	doc, err := convert.ProcessDocument(r.Context(), up, st, s.cfg)
	if err != nil {
		return nil, nil, err
	}

	res, err := export.ByFormat(doc, st.OutputFormat)
	if err != nil {
		return nil, nil, err
	}
	return doc, res, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := shield.GetLogger(r.Context())

	doc, res, err := s.convert(r)
	if err != nil {
		code := errorStatus(err)
		log.Warn("conversion failed", "error", err, "status", code)
		writeError(w, code, err)
		return
	}

	log.Info("converted", "name", doc.Name, "type", doc.DocType,
		"pages", doc.Pages, "sections", len(doc.Sections), "ocr", doc.OCRApplied)

	writeJSON(w, 200, convertResponse{
		Filename:    res.Filename,
		ContentType: res.ContentType,
		Content:     string(res.Content),
		Title:       doc.Title,
		DocType:     doc.DocType,
		Pages:       doc.Pages,
		Sections:    len(doc.Sections),
		OCRApplied:  doc.OCRApplied,
		Quality:     doc.Quality,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	log := shield.GetLogger(r.Context())

	doc, res, err := s.convert(r)
	if err != nil {
		code := errorStatus(err)
		log.Warn("download conversion failed", "error", err, "status", code)
		writeError(w, code, err)
		return
	}

	log.Info("download", "name", doc.Name, "file", res.Filename, "bytes", len(res.Content))

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Content)
}
