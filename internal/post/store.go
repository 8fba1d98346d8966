// SPDX-License-Identifier: MIT

package post

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store persists the post index in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the posts schema on the given database.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("post store: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date_ms INTEGER NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		tags_json TEXT NOT NULL DEFAULT '[]',
		draft INTEGER NOT NULL DEFAULT 0,
		body TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_posts_date ON posts(date_ms DESC);
	CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceAll swaps the whole index in one transaction, so readers never see a
// half-built index during a rescan.
func (s *Store) ReplaceAll(ctx context.Context, posts []Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM posts"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (slug, title, date_ms, summary, category, tags_json, draft, body, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range posts {
		tags, err := json.Marshal(p.Tags)
		if err != nil {
			return fmt.Errorf("post store: marshal tags for %s: %w", p.Slug, err)
		}
		draft := 0
		if p.Draft {
			draft = 1
		}
		if _, err := stmt.ExecContext(ctx,
			p.Slug, p.Title, p.Date.UnixMilli(), p.Summary, p.Category, string(tags), draft, p.Body, p.Path,
		); err != nil {
			return fmt.Errorf("post store: insert %s: %w", p.Slug, err)
		}
	}

	return tx.Commit()
}

// ListOptions filters List results.
type ListOptions struct {
	Category      string
	IncludeDrafts bool
	IncludeBody   bool
}

// List returns posts newest first. Drafts are excluded unless requested.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Post, error) {
	query := `
		SELECT slug, title, date_ms, summary, category, tags_json, draft, body
		FROM posts WHERE 1=1`
	args := []any{}

	if !opts.IncludeDrafts {
		query += " AND draft = 0"
	}
	if opts.Category != "" {
		query += " AND category = ?"
		args = append(args, opts.Category)
	}
	query += " ORDER BY date_ms DESC, slug ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		if !opts.IncludeBody {
			p.Body = ""
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetBySlug returns a single published post with its body.
func (s *Store) GetBySlug(ctx context.Context, slug string) (Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT slug, title, date_ms, summary, category, tags_json, draft, body
		FROM posts WHERE slug = ? AND draft = 0`, slug)

	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

// Count returns the number of indexed posts, drafts included.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		p      Post
		dateMS int64
		tags   string
		draft  int
	)
	if err := row.Scan(&p.Slug, &p.Title, &dateMS, &p.Summary, &p.Category, &tags, &draft, &p.Body); err != nil {
		return Post{}, err
	}
	p.Date = time.UnixMilli(dateMS).UTC()
	p.Draft = draft != 0
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return Post{}, fmt.Errorf("post store: unmarshal tags for %s: %w", p.Slug, err)
	}
	return p, nil
}
