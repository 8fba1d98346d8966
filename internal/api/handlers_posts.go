// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quillhq/quill/internal/log"
	"github.com/quillhq/quill/internal/post"
)

// postListResponse is the envelope for post listings.
type postListResponse struct {
	Posts []post.Post `json:"posts"`
	Count int         `json:"count"`
}

// handleListPosts serves GET /api/posts. Published posts only, newest first.
// Editors and admins may request drafts with ?drafts=1.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	opts := post.ListOptions{
		Category: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))),
	}

	if r.URL.Query().Get("drafts") == "1" {
		if !s.editor.Matches(r) {
			writeForbidden(w)
			return
		}
		opts.IncludeDrafts = true
	}

	posts, err := s.posts.List(r.Context(), opts)
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("post listing failed")
		writeInternalError(w)
		return
	}
	if posts == nil {
		posts = []post.Post{}
	}

	writeJSON(w, http.StatusOK, postListResponse{Posts: posts, Count: len(posts)})
}

// handleGetPost serves GET /api/posts/{slug} with the full body.
// Drafts are indistinguishable from missing posts.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, err := s.posts.GetBySlug(r.Context(), slug)
	if errors.Is(err, post.ErrNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Str("slug", slug).Msg("post lookup failed")
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, p)
}
