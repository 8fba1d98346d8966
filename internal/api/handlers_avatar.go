// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/quillhq/quill/internal/avatar"
	"github.com/quillhq/quill/internal/identity"
	"github.com/quillhq/quill/internal/log"
	"github.com/quillhq/quill/internal/metrics"
)

// handleAvatar serves GET /avatars/{name}. When the name matches a known
// login, the avatar uses that user's stable identifier and display name.
// Unknown names are rendered literally so the endpoint also works for
// commenters without accounts.
func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeError(w, fmt.Errorf("invalid avatar name"))
		return
	}

	size, err := parseSize(r.URL.Query().Get("size"), avatar.DefaultSize, avatar.MinSize, avatar.MaxSize)
	if err != nil {
		writeError(w, err)
		return
	}

	identifier := name
	display := name
	user, err := s.identities.UserByLogin(r.Context(), name)
	switch {
	case err == nil:
		identifier = user.AvatarIdentifier()
		display = user.DisplayName
	case errors.Is(err, identity.ErrUserNotFound):
		// literal mode
	default:
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("avatar user lookup failed")
		writeInternalError(w)
		return
	}

	key := fmt.Sprintf("avatar:%s:%s:%d", identifier, display, size)

	if png, ok := s.images.Get(key); ok {
		metrics.ImageCacheLookups.WithLabelValues("avatar", "hit").Inc()
		writeImage(w, r, png, "avatar")
		return
	}

	diskKey := fmt.Sprintf("%s-%d", cacheDigest(key), size)
	if s.avatarDisk != nil {
		if png, ok := s.avatarDisk.Load(diskKey); ok {
			metrics.ImageCacheLookups.WithLabelValues("avatar", "disk_hit").Inc()
			s.images.Set(key, png, s.cfg.Cache.TTL)
			writeImage(w, r, png, "avatar")
			return
		}
	}
	metrics.ImageCacheLookups.WithLabelValues("avatar", "miss").Inc()

	if s.limiter != nil && !s.limiter.Allow(s.clientIP(r)) {
		writeTooManyRequests(w)
		return
	}

	png, err := avatar.Render(identifier, display, size)
	if err != nil {
		if errors.Is(err, avatar.ErrNoInitial) {
			// A blank avatar would hide the broken identity; refuse instead.
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("avatar render failed")
		writeInternalError(w)
		return
	}
	metrics.AvatarGenerated.Inc()

	s.images.Set(key, png, s.cfg.Cache.TTL)
	if s.avatarDisk != nil {
		if err := s.avatarDisk.Store(diskKey, png); err != nil {
			log.WithComponentFromContext(r.Context(), "api").Warn().Err(err).Msg("avatar disk cache write failed")
		}
	}

	writeImage(w, r, png, "avatar")
}
