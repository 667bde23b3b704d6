package httpapi

import (
	"crypto/hmac"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"mcpgate/internal/bootstrap/logging"
)

// requireBearer guards a route group with a static bearer token. An empty
// configured token disables the check for local development.
func requireBearer(token string) func(http.Handler) http.Handler {
	configured := strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		if configured == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			const prefix = "Bearer "
			if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
				writeError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			presented := strings.TrimSpace(header[len(prefix):])
			if !hmac.Equal([]byte(presented), []byte(configured)) {
				writeError(w, http.StatusUnauthorized, "Invalid authentication token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request with the final status code. The
// wrapped writer keeps http.Flusher visible to the streaming proxy path.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Info(
			r.Context(),
			"request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
