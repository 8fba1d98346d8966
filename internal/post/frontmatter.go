// SPDX-License-Identifier: MIT

package post

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// frontMatter mirrors the YAML header of a post file.
type frontMatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Summary  string   `yaml:"summary"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Draft    bool     `yaml:"draft"`
}

// dateLayouts are accepted for the front-matter date field, most specific first.
var dateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var filenameRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.(md|markdown)$`)

// ParseFile reads and parses a single post file. The filename carries the
// canonical date and slug, Jekyll-style; front matter may refine the date.
func ParseFile(path string) (Post, error) {
	date, slug, err := splitFilename(filepath.Base(path))
	if err != nil {
		return Post{}, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the indexed posts dir
	if err != nil {
		return Post{}, fmt.Errorf("post: read %s: %w", path, err)
	}

	fm, body, err := splitFrontMatter(string(data))
	if err != nil {
		return Post{}, fmt.Errorf("%w: %s", err, path)
	}

	p := Post{
		Slug:     slug,
		Title:    fm.Title,
		Date:     date,
		Summary:  fm.Summary,
		Category: strings.ToLower(strings.TrimSpace(fm.Category)),
		Tags:     fm.Tags,
		Draft:    fm.Draft,
		Body:     body,
		Path:     path,
	}

	if fm.Date != "" {
		for _, layout := range dateLayouts {
			if ts, perr := time.Parse(layout, fm.Date); perr == nil {
				p.Date = ts
				break
			}
		}
	}
	if p.Title == "" {
		// Fall back to the slug so untitled posts still list sensibly.
		p.Title = strings.ReplaceAll(slug, "-", " ")
	}

	return p, nil
}

// splitFilename extracts date and normalized slug from YYYY-MM-DD-slug.md.
func splitFilename(name string) (time.Time, string, error) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", fmt.Errorf("%w: %s", ErrBadFilename, name)
	}
	date, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %s", ErrBadFilename, name)
	}
	slug, err := NormalizeSlug(m[2])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %s", ErrBadFilename, name)
	}
	return date, slug, nil
}

// splitFrontMatter separates the YAML header from the body.
func splitFrontMatter(content string) (frontMatter, string, error) {
	trimmed := strings.TrimPrefix(content, "\uFEFF") // tolerate a BOM
	if !strings.HasPrefix(trimmed, fence+"\n") && !strings.HasPrefix(trimmed, fence+"\r\n") {
		return frontMatter{}, "", ErrNoFrontMatter
	}

	rest := trimmed[len(fence):]
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")

	header, body, ok := splitAtClosingFence(rest)
	if !ok {
		return frontMatter{}, "", ErrNoFrontMatter
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return frontMatter{}, "", fmt.Errorf("post: front matter: %w", err)
	}

	return fm, strings.TrimSpace(body), nil
}

// splitAtClosingFence finds the first line that is exactly the fence. Lines
// that merely start with it ("----", "---more") do not terminate the header.
func splitAtClosingFence(rest string) (header, body string, ok bool) {
	if isFenceLine(rest) {
		return "", afterFenceLine(rest), true
	}

	from := 0
	for {
		idx := strings.Index(rest[from:], "\n"+fence)
		if idx < 0 {
			return "", "", false
		}
		abs := from + idx
		line := rest[abs+1:]
		if isFenceLine(line) {
			return rest[:abs], afterFenceLine(line), true
		}
		from = abs + 1
	}
}

// isFenceLine reports whether s starts with a line that is exactly the fence.
func isFenceLine(s string) bool {
	if !strings.HasPrefix(s, fence) {
		return false
	}
	tail := s[len(fence):]
	return tail == "" || strings.HasPrefix(tail, "\n") || strings.HasPrefix(tail, "\r\n")
}

// afterFenceLine returns the content following the fence line terminator.
func afterFenceLine(s string) string {
	s = s[len(fence):]
	s = strings.TrimPrefix(s, "\r")
	return strings.TrimPrefix(s, "\n")
}
