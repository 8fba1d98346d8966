// SPDX-License-Identifier: MIT

package post

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/metrics"
)

// Indexer scans a directory of post files into the store.
type Indexer struct {
	dir    string
	store  *Store
	logger zerolog.Logger
}

// NewIndexer creates an indexer for the given posts directory.
func NewIndexer(dir string, store *Store, logger zerolog.Logger) *Indexer {
	return &Indexer{dir: dir, store: store, logger: logger}
}

// Dir returns the watched posts directory.
func (ix *Indexer) Dir() string {
	return ix.dir
}

// Reindex rescans the directory and replaces the whole index. Files that fail
// to parse are logged and skipped; they never abort the scan.
func (ix *Indexer) Reindex(ctx context.Context) error {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		metrics.PostIndexRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("post index: read dir %s: %w", ix.dir, err)
	}

	var posts []Post
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".md") && !strings.HasSuffix(name, ".markdown") {
			continue
		}

		p, err := ParseFile(filepath.Join(ix.dir, name))
		if err != nil {
			skipped++
			ix.logger.Warn().Err(err).Str("file", name).Msg("skipping unparseable post")
			continue
		}
		posts = append(posts, p)
	}

	if err := ix.store.ReplaceAll(ctx, posts); err != nil {
		metrics.PostIndexRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("post index: %w", err)
	}

	metrics.PostIndexRuns.WithLabelValues("ok").Inc()
	metrics.PostsIndexed.Set(float64(len(posts)))

	ix.logger.Info().
		Int("indexed", len(posts)).
		Int("skipped", skipped).
		Str("event", "posts.indexed").
		Msg("post index rebuilt")

	return nil
}
