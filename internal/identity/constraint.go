// SPDX-License-Identifier: MIT

package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/quillhq/quill/internal/log"
	"github.com/quillhq/quill/internal/metrics"
)

// SessionCookie is the cookie carrying the session identifier.
const SessionCookie = "quill_session"

// ErrNilPredicate is returned when a constraint is constructed without a
// predicate. A predicate-less constraint would match everyone, so this is
// rejected at construction rather than at request time.
var ErrNilPredicate = errors.New("identity: constraint requires a predicate")

// UserResolver resolves a session identifier to a user.
type UserResolver interface {
	UserBySession(ctx context.Context, sessionID string) (*User, error)
}

// Predicate is the caller-supplied condition evaluated against the
// resolved user.
type Predicate func(*User) bool

// Constraint decides whether a request matches a route: it looks up the user
// behind the request's session cookie and tests the predicate against them.
// Requests without a resolvable user never match.
type Constraint struct {
	resolver  UserResolver
	predicate Predicate
}

// NewConstraint builds a routing constraint. Both the resolver and the
// predicate are required.
func NewConstraint(resolver UserResolver, predicate Predicate) (*Constraint, error) {
	if resolver == nil {
		return nil, errors.New("identity: constraint requires a resolver")
	}
	if predicate == nil {
		return nil, ErrNilPredicate
	}
	return &Constraint{resolver: resolver, predicate: predicate}, nil
}

// Matches evaluates the constraint for a request.
func (c *Constraint) Matches(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		metrics.ConstraintEvaluations.WithLabelValues("no_session").Inc()
		return false
	}

	user, err := c.resolver.UserBySession(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			logger := log.WithComponentFromContext(r.Context(), "constraint")
			logger.Warn().Err(err).Msg("session resolution failed")
		}
		metrics.ConstraintEvaluations.WithLabelValues("no_user").Inc()
		return false
	}

	if c.predicate(user) {
		metrics.ConstraintEvaluations.WithLabelValues("matched").Inc()
		return true
	}
	metrics.ConstraintEvaluations.WithLabelValues("rejected").Inc()
	return false
}

// CurrentUser resolves the user behind a request, if any.
func (c *Constraint) CurrentUser(r *http.Request) (*User, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return c.resolver.UserBySession(r.Context(), cookie.Value)
}

// RequireRole returns a predicate satisfied by users holding the role.
func RequireRole(role Role) Predicate {
	return func(u *User) bool {
		return u.HasRole(role)
	}
}
