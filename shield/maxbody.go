package shield

import (
	"fmt"
	"net/http"
	"strings"
)

// framingHeadroom is the slack allowed above the per-file limit for
// multipart boundaries and form fields.
const framingHeadroom = 1 << 20

// MaxUploadBody returns middleware that limits the request body size for
// multipart and form-encoded POST requests to fileLimit plus framing
// headroom. Other content types are passed through untouched. Requests
// declaring an oversized Content-Length are rejected with a JSON 413 naming
// the configured limit; chunked bodies are cut off by MaxBytesReader while
// the handler reads.
func MaxUploadBody(fileLimit int64) func(http.Handler) http.Handler {
	maxBytes := fileLimit + framingHeadroom
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ct := r.Header.Get("Content-Type")
			if strings.HasPrefix(ct, "multipart/form-data") || ct == "application/x-www-form-urlencoded" {
				if r.ContentLength > maxBytes {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					fmt.Fprintf(w, `{"error":"request body too large: file exceeds maximum size of %d bytes"}`+"\n", fileLimit)
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
