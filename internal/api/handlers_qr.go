// SPDX-License-Identifier: MIT

package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quillhq/quill/internal/log"
	"github.com/quillhq/quill/internal/metrics"
	"github.com/quillhq/quill/internal/qr"
)

// handleQR serves GET /qr/{data}. Rendered codes are cached; identical
// requests are answered from the cache or with 304 Not Modified.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	data, err := url.PathUnescape(chi.URLParam(r, "data"))
	if err != nil {
		writeError(w, fmt.Errorf("invalid payload encoding"))
		return
	}

	if err := qr.ValidatePayload(data); err != nil {
		writeError(w, err)
		return
	}

	level, err := qr.ParseLevel(r.URL.Query().Get("level"))
	if err != nil {
		writeError(w, err)
		return
	}

	size, err := parseSize(r.URL.Query().Get("size"), qr.DefaultSize, qr.MinSize, qr.MaxSize)
	if err != nil {
		writeError(w, err)
		return
	}

	key := fmt.Sprintf("qr:%s:%d:%s", data, size, level)

	if png, ok := s.images.Get(key); ok {
		metrics.ImageCacheLookups.WithLabelValues("qr", "hit").Inc()
		writeImage(w, r, png, "qr")
		return
	}
	metrics.ImageCacheLookups.WithLabelValues("qr", "miss").Inc()

	// Only generation is rate limited; cached responses are cheap.
	if s.limiter != nil && !s.limiter.Allow(s.clientIP(r)) {
		writeTooManyRequests(w)
		return
	}

	png, err := qr.Generate(data, size, level)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Int("size", size).Str("level", string(level)).Msg("qr generation failed")
		writeInternalError(w)
		return
	}

	s.images.Set(key, png, s.cfg.Cache.TTL)
	writeImage(w, r, png, "qr")
}

// parseSize resolves an optional pixel-size query parameter.
func parseSize(raw string, def, min, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", raw)
	}
	if size < min || size > max {
		return 0, fmt.Errorf("size %d out of range [%d,%d]", size, min, max)
	}
	return size, nil
}

// cacheDigest hashes a cache key into a short stable hex string.
func cacheDigest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// contentETag derives a strong ETag from the response bytes themselves.
func contentETag(png []byte) string {
	sum := sha256.Sum256(png)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}

func matchETag(r *http.Request, etag string) bool {
	return r.Header.Get("If-None-Match") == etag
}

// writeImage answers with the PNG, or with 304 Not Modified when the client
// already holds bytes with the same content hash.
func writeImage(w http.ResponseWriter, r *http.Request, png []byte, kind string) {
	etag := contentETag(png)
	if matchETag(r, etag) {
		metrics.ImageCacheLookups.WithLabelValues(kind, "not_modified").Inc()
		writeNotModified(w, etag)
		return
	}
	writePNG(w, png, etag)
}

func writeNotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusNotModified)
}

func writePNG(w http.ResponseWriter, png []byte, etag string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(png)
}
