// Package web exposes the conversion service over HTTP: a single-page
// frontend, a JSON API for preview conversions, and a download endpoint.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/visionparse/visionparse/config"
	"github.com/visionparse/visionparse/convert"
	"github.com/visionparse/visionparse/shield"
)

//go:embed static
var staticFS embed.FS

// Server holds the service configuration and logger shared by all handlers.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewServer creates a Server. A nil logger falls back to slog.Default().
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Router builds the chi router with the shield middleware stack applied.
// The shield body cap is derived from the per-file maximum so oversized
// uploads are refused before the handler reads them, with the configured
// limit named in the response.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	for _, mw := range shield.DefaultStack(s.cfg.MaxFileSize) {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("static/index.html")
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})
	r.Handle("/static/*", http.FileServerFS(staticFS))

	r.Get("/api/config", s.handleConfig)
	r.Post("/api/convert", s.handleConvert)
	r.Post("/api/convert/download", s.handleDownload)

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// errorStatus maps conversion and formatting failures onto HTTP statuses.
// Validation failures are client errors (400, or 413 for oversized uploads);
// parser failures are 422 because the request was well-formed but the
// document could not be processed.
func errorStatus(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, convert.ErrFileTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errInvalidRequest), convert.IsValidationError(err):
		return http.StatusBadRequest
	}
	var convErr *convert.ConversionError
	if errors.As(err, &convErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 8 << 20
