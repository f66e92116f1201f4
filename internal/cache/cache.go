// Package cache materializes remote media on the local filesystem. Files are
// stored content-addressed by the remote path, so repeated lookups for the
// same upstream asset hit the same cached file.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Cache maps a remote media path to a locally cached file.
type Cache struct {
	dir string
}

// New initializes a cache rooted at dir, creating it when absent.
func New(dir string) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: ensure directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the configured cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Lookup returns the local file for remotePath, or false when the asset has
// not been materialized yet.
func (c *Cache) Lookup(remotePath string) (string, bool) {
	if c == nil {
		return "", false
	}
	local := c.localPath(remotePath)
	info, err := os.Stat(local)
	if err != nil || info.IsDir() {
		return "", false
	}
	return local, true
}

// Store writes the asset bytes for remotePath and returns the local file path.
func (c *Cache) Store(remotePath string, data []byte) (string, error) {
	if c == nil {
		return "", errors.New("cache: no cache configured")
	}
	local := c.localPath(remotePath)
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return "", fmt.Errorf("cache: write asset: %w", err)
	}
	return local, nil
}

// localPath derives the cache file name: the sha256 of the normalized remote
// path plus its original extension. Hashing prevents traversal out of the
// cache root regardless of what the remote path contains.
func (c *Cache) localPath(remotePath string) string {
	normalized := path.Clean("/" + strings.TrimSpace(remotePath))
	sum := sha256.Sum256([]byte(normalized))
	name := hex.EncodeToString(sum[:])
	if ext := strings.ToLower(path.Ext(normalized)); ext != "" && len(ext) <= 8 {
		name += ext
	}
	return filepath.Join(c.dir, name)
}
