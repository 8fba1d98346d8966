// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	"github.com/quillhq/quill/internal/log"
)

// Logging returns a middleware that emits a structured log line per request
// after the handler completes.
func Logging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &statusWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(lw, r)

			logger := log.WithComponentFromContext(r.Context(), "http")
			evt := logger.Info()
			if lw.statusCode >= http.StatusInternalServerError {
				evt = logger.Error()
			} else if lw.statusCode >= http.StatusBadRequest {
				evt = logger.Warn()
			}
			evt.
				Str("event", "http.request").
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", lw.statusCode).
				Int("bytes", lw.bytesWritten).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("request completed")
		})
	}
}
