// SPDX-License-Identifier: MIT

// Package post models the blog's Markdown posts: Jekyll-style front matter
// ahead of a prose body, indexed from a directory into SQLite.
package post

import (
	"errors"
	"time"
)

// Post is a parsed blog post.
type Post struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Summary  string    `json:"summary,omitempty"`
	Category string    `json:"category,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Draft    bool      `json:"draft,omitempty"`
	Body     string    `json:"body,omitempty"`
	Path     string    `json:"-"` // source file, not exposed
}

var (
	// ErrNotFound is returned when a slug resolves to no published post.
	ErrNotFound = errors.New("post: not found")

	// ErrNoFrontMatter is returned for files without a front-matter fence.
	ErrNoFrontMatter = errors.New("post: missing front matter")

	// ErrBadFilename is returned for files not named YYYY-MM-DD-slug.md.
	ErrBadFilename = errors.New("post: filename must be YYYY-MM-DD-slug.md")
)
