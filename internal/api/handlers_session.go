// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/quillhq/quill/internal/identity"
	"github.com/quillhq/quill/internal/log"
)

type loginRequest struct {
	Login string `json:"login"`
}

// handleLogin serves POST /api/session: establishes a session for a known
// login and sets the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body"))
		return
	}
	if req.Login == "" {
		writeError(w, fmt.Errorf("login is required"))
		return
	}

	user, err := s.identities.UserByLogin(r.Context(), req.Login)
	if errors.Is(err, identity.ErrUserNotFound) {
		writeUnauthorized(w)
		return
	}
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("login lookup failed")
		writeInternalError(w)
		return
	}

	sessionID, err := s.identities.CreateSession(r.Context(), user.ID, s.cfg.SessionTTL)
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("session creation failed")
		writeInternalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     identity.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusCreated, user)
}

// handleWhoAmI serves GET /api/session: the user behind the current session.
func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	user, err := s.admin.CurrentUser(r)
	if errors.Is(err, identity.ErrNoSession) {
		writeUnauthorized(w)
		return
	}
	if err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("session lookup failed")
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleLogout serves DELETE /api/session. Idempotent.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(identity.SessionCookie); err == nil && cookie.Value != "" {
		if err := s.identities.DeleteSession(r.Context(), cookie.Value); err != nil {
			log.WithComponentFromContext(r.Context(), "api").Error().Err(err).Msg("session deletion failed")
			writeInternalError(w)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     identity.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}
