// SPDX-License-Identifier: MIT

package avatar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// DiskCache persists rendered avatars so they survive restarts. Writes are
// atomic; a crash mid-write never leaves a truncated PNG behind.
type DiskCache struct {
	dir string
}

// NewDiskCache creates the cache directory if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("avatar: create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Load returns the cached PNG for key, or false if absent.
func (c *DiskCache) Load(key string) ([]byte, bool) {
	path, err := c.path(key)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is confined by c.path
	if err != nil {
		return nil, false
	}
	return data, true
}

// Store writes the PNG for key atomically.
func (c *DiskCache) Store(key string, data []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("avatar: cache write: %w", err)
	}
	return nil
}

// path confines key to the cache directory.
func (c *DiskCache) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("avatar: invalid cache key %q", key)
	}
	return filepath.Join(c.dir, key+".png"), nil
}
