// Package observability lets a binary observe kgview's libraries without
// the libraries importing a metrics backend.
//
// Three hook sets exist: [PipelineHooks] for knowledge-graph fetches,
// transforms and exports, [CacheHooks] for cache traffic keyed by key type
// (graph, render, http), and [HTTPHooks] for calls to the backend API.
// Every set starts as a no-op. main installs real implementations once:
//
//	reg := metrics.NewRegistry()
//	observability.Install(reg, reg, reg)
//
// and library code reads the current set at the call site:
//
//	observability.Pipeline().OnFetchStart(ctx, kbID)
//
// [Fanout] combines several pipeline hook sets, e.g. metrics plus a logger.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the graph pipeline.
type PipelineHooks interface {
	OnFetchStart(ctx context.Context, kbID string)
	OnFetchComplete(ctx context.Context, kbID string, nodeCount int, duration time.Duration, err error)
	OnTransformComplete(ctx context.Context, nodeCount, edgeCount int, duration time.Duration)
	OnExportStart(ctx context.Context, format string)
	OnExportComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is the key's namespace, never
// the key itself, so label cardinality stays bounded.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events for outgoing requests to the backend.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError covers transport failures; HTTP error statuses go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnTransformComplete(context.Context, int, int, time.Duration)        {}
func (NoopPipelineHooks) OnExportStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// Fanout forwards pipeline events to each element in order.
type Fanout []PipelineHooks

func (f Fanout) OnFetchStart(ctx context.Context, kbID string) {
	for _, h := range f {
		h.OnFetchStart(ctx, kbID)
	}
}

func (f Fanout) OnFetchComplete(ctx context.Context, kbID string, n int, d time.Duration, err error) {
	for _, h := range f {
		h.OnFetchComplete(ctx, kbID, n, d, err)
	}
}

func (f Fanout) OnTransformComplete(ctx context.Context, nodes, edges int, d time.Duration) {
	for _, h := range f {
		h.OnTransformComplete(ctx, nodes, edges, d)
	}
}

func (f Fanout) OnExportStart(ctx context.Context, format string) {
	for _, h := range f {
		h.OnExportStart(ctx, format)
	}
}

func (f Fanout) OnExportComplete(ctx context.Context, format string, size int, d time.Duration, err error) {
	for _, h := range f {
		h.OnExportComplete(ctx, format, size, d, err)
	}
}

// slot holds one installed hook set.
type slot[T any] struct {
	mu   sync.RWMutex
	val  T
	noop T
}

func newSlot[T any](noop T) *slot[T] { return &slot[T]{val: noop, noop: noop} }

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val
}

func (s *slot[T]) set(v T, ok bool) {
	if !ok {
		return
	}
	s.mu.Lock()
	s.val = v
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.val = s.noop
	s.mu.Unlock()
}

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h, h != nil) }

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h, h != nil) }

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h, h != nil) }

// Install sets all three hook sets; nil arguments leave a set unchanged.
func Install(p PipelineHooks, c CacheHooks, h HTTPHooks) {
	SetPipelineHooks(p)
	SetCacheHooks(c)
	SetHTTPHooks(h)
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks. Tests that install hooks defer it.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
