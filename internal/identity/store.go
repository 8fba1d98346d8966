// SPDX-License-Identifier: MIT

package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists users and sessions in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the identity schema on the given database.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("identity store: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at_ms INTEGER NOT NULL,
		expires_at_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at_ms);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateUser inserts a new user and returns it with a generated ID.
func (s *Store) CreateUser(ctx context.Context, login, displayName string, role Role) (*User, error) {
	if login == "" {
		return nil, fmt.Errorf("identity: login must not be empty")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	u := &User{
		ID:          uuid.New().String(),
		Login:       login,
		DisplayName: displayName,
		Role:        role,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, login, display_name, role, created_at_ms)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Login, u.DisplayName, string(u.Role), time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("identity: create user: %w", err)
	}

	return u, nil
}

// UserByLogin looks a user up by login name.
func (s *Store) UserByLogin(ctx context.Context, login string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, login, display_name, role FROM users WHERE login = ?`, login))
}

// UserByID looks a user up by ID.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, login, display_name, role FROM users WHERE id = ?`, id))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Login, &u.DisplayName, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

// CreateSession issues a new session for the user and returns its opaque ID.
func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("identity: session ttl must be positive")
	}

	sessionID := uuid.New().String()
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, user_id, created_at_ms, expires_at_ms)
		VALUES (?, ?, ?, ?)`,
		sessionID, userID, now.UnixMilli(), now.Add(ttl).UnixMilli())
	if err != nil {
		return "", fmt.Errorf("identity: create session: %w", err)
	}

	return sessionID, nil
}

// UserBySession resolves a session ID to its user. Unknown and expired
// sessions both return ErrNoSession.
func (s *Store) UserBySession(ctx context.Context, sessionID string) (*User, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.login, u.display_name, u.role
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.session_id = ? AND s.expires_at_ms > ?`,
		sessionID, time.Now().UnixMilli())

	u, err := s.scanUser(row)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNoSession
	}
	return u, err
}

// DeleteSession removes a session (logout). Deleting an unknown session is
// not an error.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", sessionID)
	return err
}

// PurgeExpiredSessions removes expired rows and returns how many were purged.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at_ms <= ?", time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
