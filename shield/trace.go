package shield

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/visionparse/visionparse/idgen"
	"github.com/visionparse/visionparse/kit"
)

// traceGen produces the per-request trace IDs. Short NanoIDs keep log lines
// compact; swap for idgen.UUIDv7() when correlating across services.
var traceGen = idgen.NanoID(8)

// TraceID generates a trace ID for each request and injects it into the
// context, response headers, and a per-request structured logger.
// The trace ID is stored under kit.TraceIDKey and the logger under LoggerKey.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := traceGen()

		ctx := kit.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-ID", traceID)

		logger := slog.Default().With(
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		ctx = context.WithValue(ctx, LoggerKey, logger)
		logger.Info("request")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
