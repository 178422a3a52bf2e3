package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mochizuki1122m/shodo-lpr/pkg/idx"
)

// HTTPMiddleware logs requests and attaches a contextual logger into request
// context. Every request gets a correlation id (caller-supplied via
// X-Correlation-ID or freshly minted) which is echoed on the response so
// clients and downstream services can stitch traces together.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			cid := r.Header.Get("X-Correlation-ID")
			if cid == "" {
				cid = idx.New().String()
			}

			// Create contextual logger
			logger := base.With(
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			// Attach to context for downstream use, WithCorrelationID
			// annotates the logger with the id
			ctx := WithContext(r.Context(), logger)
			ctx = WithCorrelationID(ctx, cid)
			r = r.WithContext(ctx)

			w.Header().Set("X-Correlation-ID", cid)

			// Serve request
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Milliseconds()
			FromContext(ctx).Info("http_request",
				"status", rw.status,
				"duration_ms", duration,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
