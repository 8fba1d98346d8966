// SPDX-License-Identifier: MIT

package post

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

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "posts.db"), sqlite.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func samplePosts() []Post {
	return []Post{
		{
			Slug:     "newest",
			Title:    "Newest",
			Date:     time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC),
			Category: "rails",
			Tags:     []string{"rails"},
			Body:     "newest body",
		},
		{
			Slug:     "oldest",
			Title:    "Oldest",
			Date:     time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
			Category: "go",
			Body:     "oldest body",
		},
		{
			Slug:  "hidden-draft",
			Title: "Hidden Draft",
			Date:  time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
			Draft: true,
			Body:  "draft body",
		},
	}
}

func TestStore_ListExcludesDraftsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, samplePosts()))

	posts, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newest", posts[0].Slug)
	assert.Equal(t, "oldest", posts[1].Slug)
	assert.Empty(t, posts[0].Body, "listing omits bodies unless requested")
}

func TestStore_ListByCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, samplePosts()))

	posts, err := store.List(ctx, ListOptions{Category: "go"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "oldest", posts[0].Slug)
}

func TestStore_ListIncludeDrafts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, samplePosts()))

	posts, err := store.List(ctx, ListOptions{IncludeDrafts: true})
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestStore_GetBySlug(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, samplePosts()))

	p, err := store.GetBySlug(ctx, "newest")
	require.NoError(t, err)
	assert.Equal(t, "Newest", p.Title)
	assert.Equal(t, "newest body", p.Body)
	assert.Equal(t, []string{"rails"}, p.Tags)
}

func TestStore_GetBySlug_DraftIsNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, samplePosts()))

	_, err := store.GetBySlug(ctx, "hidden-draft")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetBySlug(ctx, "never-existed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReplaceAllIsAtomicSwap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, samplePosts()))
	require.NoError(t, store.ReplaceAll(ctx, samplePosts()[:1]))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
