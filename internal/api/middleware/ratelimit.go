// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/quillhq/quill/internal/log"
	"github.com/quillhq/quill/internal/metrics"
)

// GlobalRateLimit enforces a per-IP request budget across the whole API.
// Limits are per minute.
func GlobalRateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 300
	}

	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RateLimitExceeded.WithLabelValues("global").Inc()

			logger := log.WithComponentFromContext(r.Context(), "ratelimit")
			logger.Warn().
				Str("event", "ratelimit.exceeded").
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("global rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":      "Too many requests",
				"request_id": log.RequestIDFromContext(r.Context()),
			})
		}),
	)
}
