// Package cache stores derived kgview artifacts: fetched graph payloads,
// transformed render graphs and exported DOT/SVG documents.
//
// Backends implement [Cache]: [FileCache] for the CLI, [MemoryCache] for a
// single server process, [RedisCache] for shared deployments and
// [NullCache] to disable caching. Keys come from a [Keyer] so every backend
// agrees on the key layout:
//
//	graph:<kbID>                      raw payload fetched from the backend
//	render:<sha256(graph, options)>   exported render graph in one format
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the value and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Key type labels used for observability.
const (
	KeyTypeGraph  = "graph"
	KeyTypeRender = "render"
	KeyTypeHTTP   = "http"
)

// RenderKeyOpts are the render parameters that change an exported artifact.
type RenderKeyOpts struct {
	Format   string `json:"format"`
	Directed bool   `json:"directed,omitempty"`
	Layout   string `json:"layout,omitempty"`
	Labels   bool   `json:"labels,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	HTTPKey(namespace, key string) string
	GraphKey(kbID string) string
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns http:<namespace>:<key>.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return KeyTypeHTTP + ":" + namespace + ":" + key
}

// GraphKey returns graph:<kbID>.
func (DefaultKeyer) GraphKey(kbID string) string {
	return KeyTypeGraph + ":" + kbID
}

// RenderKey hashes the graph hash together with opts.
func (DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey(KeyTypeRender, graphHash, opts)
}

// keyType returns the label of key for hooks: the first known segment,
// skipping scope prefixes added by [ScopedKeyer].
func keyType(key string) string {
	for _, part := range strings.Split(key, ":") {
		switch part {
		case KeyTypeGraph, KeyTypeRender, KeyTypeHTTP:
			return part
		}
	}
	return "other"
}
