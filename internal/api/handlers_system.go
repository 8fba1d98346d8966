// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/quillhq/quill/internal/log"
	"github.com/quillhq/quill/internal/post"
)

// handleRoot serves GET /. The same path renders two different pages: admins
// get the dashboard, everyone else the public post index. The decision is the
// routing constraint's, not the handler's.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if s.admin.Matches(r) {
		s.handleDashboard(w, r)
		return
	}

	posts, err := s.posts.List(r.Context(), post.ListOptions{})
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("post listing failed")
		writeInternalError(w)
		return
	}
	if posts == nil {
		posts = []post.Post{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":  "index",
		"posts": posts,
		"count": len(posts),
	})
}

// handleDashboard reports operational state for admins.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := s.admin.CurrentUser(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	total, err := s.posts.Count(r.Context())
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("post count failed")
		writeInternalError(w)
		return
	}

	published, err := s.posts.List(r.Context(), post.ListOptions{})
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("post listing failed")
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":            "dashboard",
		"user":            user,
		"posts_total":     total,
		"posts_published": len(published),
		"cache":           s.images.Stats(),
	})
}

// handleCacheStats serves GET /api/admin/cache/stats.
func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.images.Stats())
}

// handleCacheClear serves DELETE /api/admin/cache.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.images.Clear()
	log.WithComponentFromContext(r.Context(), "api").Info().Msg("image cache cleared")
	w.WriteHeader(http.StatusNoContent)
}
