// SPDX-License-Identifier: MIT

package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]*User

func (m mapResolver) UserBySession(_ context.Context, sessionID string) (*User, error) {
	if u, ok := m[sessionID]; ok {
		return u, nil
	}
	return nil, ErrNoSession
}

func requestWithSession(sessionID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if sessionID != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	}
	return r
}

func TestNewConstraint_RequiresPredicate(t *testing.T) {
	_, err := NewConstraint(mapResolver{}, nil)
	assert.ErrorIs(t, err, ErrNilPredicate)
}

func TestNewConstraint_RequiresResolver(t *testing.T) {
	_, err := NewConstraint(nil, RequireRole(RoleAdmin))
	assert.Error(t, err)
}

func TestConstraint_MatchesByRole(t *testing.T) {
	resolver := mapResolver{
		"admin-session":  {ID: "1", Login: "alice", Role: RoleAdmin},
		"reader-session": {ID: "2", Login: "bob", Role: RoleReader},
	}

	c, err := NewConstraint(resolver, RequireRole(RoleAdmin))
	require.NoError(t, err)

	assert.True(t, c.Matches(requestWithSession("admin-session")))
	assert.False(t, c.Matches(requestWithSession("reader-session")))
}

func TestConstraint_NoResolvableUserNeverMatches(t *testing.T) {
	c, err := NewConstraint(mapResolver{}, func(*User) bool { return true })
	require.NoError(t, err)

	// No cookie at all.
	assert.False(t, c.Matches(requestWithSession("")))
	// Cookie present but session unknown.
	assert.False(t, c.Matches(requestWithSession("stale-session")))
}

func TestConstraint_AdminSatisfiesEveryRole(t *testing.T) {
	resolver := mapResolver{
		"admin-session": {ID: "1", Login: "alice", Role: RoleAdmin},
	}

	c, err := NewConstraint(resolver, RequireRole(RoleEditor))
	require.NoError(t, err)

	assert.True(t, c.Matches(requestWithSession("admin-session")))
}

func TestConstraint_CurrentUser(t *testing.T) {
	user := &User{ID: "1", Login: "alice", Role: RoleReader}
	c, err := NewConstraint(mapResolver{"s1": user}, RequireRole(RoleReader))
	require.NoError(t, err)

	got, err := c.CurrentUser(requestWithSession("s1"))
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = c.CurrentUser(requestWithSession(""))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUser_HasRole(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	editor := &User{Role: RoleEditor}
	var nilUser *User

	assert.True(t, admin.HasRole(RoleAdmin))
	assert.True(t, admin.HasRole(RoleReader), "admin satisfies every role")
	assert.True(t, editor.HasRole(RoleEditor))
	assert.False(t, editor.HasRole(RoleAdmin))
	assert.False(t, nilUser.HasRole(RoleReader))
}
