// SPDX-License-Identifier: MIT

// Package identity holds users, sessions and the role-based routing
// constraint consulted by the router.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Role is a user's access level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleReader Role = "reader"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleEditor, RoleReader:
		return r, nil
	default:
		return "", fmt.Errorf("identity: unknown role %q", s)
	}
}

// User is an account known to the service.
type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

var (
	// ErrUserNotFound is returned when a lookup resolves no user.
	ErrUserNotFound = errors.New("identity: user not found")

	// ErrNoSession is returned when a session ID is unknown or expired.
	ErrNoSession = errors.New("identity: no such session")
)

// HasRole reports whether the user holds the given role. Admins satisfy
// every role check.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleAdmin {
		return true
	}
	return u.Role == role
}

// AvatarIdentifier is the stable string the avatar color is derived from.
// The login, not the display name: renaming a user keeps their color.
func (u *User) AvatarIdentifier() string {
	return u.Login
}
