// SPDX-License-Identifier: MIT

package identity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/internal/persistence/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "identity.db"), sqlite.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestStore_CreateAndLookupUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u, err := store.CreateUser(ctx, "alice", "Alice Adams", RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	byLogin, err := store.UserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byLogin.ID)
	assert.Equal(t, RoleAdmin, byLogin.Role)

	byID, err := store.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Adams", byID.DisplayName)
}

func TestStore_CreateUser_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "", "Nobody", RoleReader)
	assert.Error(t, err)

	_, err = store.CreateUser(ctx, "bob", "Bob", Role("superuser"))
	assert.Error(t, err)
}

func TestStore_CreateUser_DuplicateLogin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "alice", "Alice", RoleReader)
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, "alice", "Other Alice", RoleReader)
	assert.Error(t, err)
}

func TestStore_UserNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UserByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_SessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u, err := store.CreateUser(ctx, "alice", "Alice", RoleEditor)
	require.NoError(t, err)

	sessionID, err := store.CreateSession(ctx, u.ID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	resolved, err := store.UserBySession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.ID)

	require.NoError(t, store.DeleteSession(ctx, sessionID))

	_, err = store.UserBySession(ctx, sessionID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_ExpiredSessionDoesNotResolve(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u, err := store.CreateUser(ctx, "alice", "Alice", RoleReader)
	require.NoError(t, err)

	sessionID, err := store.CreateSession(ctx, u.ID, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = store.UserBySession(ctx, sessionID)
	assert.ErrorIs(t, err, ErrNoSession)

	purged, err := store.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
}

func TestStore_UnknownSession(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UserBySession(context.Background(), "not-a-session")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = store.UserBySession(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}
