package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [ResponseCache.Get] when the entry exists but is
// older than the TTL. Callers refetch and [ResponseCache.Set] the new value.
var ErrExpired = errors.New("cache entry expired")

// ResponseCache stores JSON-encoded responses as files named by the SHA-256
// of their key. Entry age is the file modification time; a TTL of 0 never
// expires.
//
// A ResponseCache is not goroutine-safe, but several instances (or
// processes) may share one directory.
type ResponseCache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// DefaultCacheDir returns ~/.cache/kgview/http.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "kgview", "http"), nil
}

// NewResponseCache creates a cache in dir ([DefaultCacheDir] when empty).
func NewResponseCache(dir string, ttl time.Duration) (*ResponseCache, error) {
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResponseCache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *ResponseCache) Dir() string { return c.dir }

// TTL returns the entry lifetime.
func (c *ResponseCache) TTL() time.Duration { return c.ttl }

// Get decodes the entry for key into v.
//
//   - (true, nil): fresh hit, v populated
//   - (false, nil): miss
//   - (false, ErrExpired): stale entry
//   - (false, err): I/O or decode failure
func (c *ResponseCache) Get(key string, v any) (bool, error) {
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set JSON-encodes v under key, refreshing its age.
func (c *ResponseCache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(c.prefix+key), data, 0o644)
}

// Delete removes the entry for key. Missing entries are not an error.
func (c *ResponseCache) Delete(key string) error {
	err := os.Remove(c.keyPath(c.prefix + key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry in the cache directory, whatever its namespace.
func (c *ResponseCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Namespace returns a view whose keys are prefixed with prefix. Views share
// the directory and TTL and can be chained.
func (c *ResponseCache) Namespace(prefix string) *ResponseCache {
	return &ResponseCache{dir: c.dir, ttl: c.ttl, prefix: c.prefix + prefix}
}

func (c *ResponseCache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
