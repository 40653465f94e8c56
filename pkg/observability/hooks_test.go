package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		p := NoopPipelineHooks{}
		p.OnFetchStart(ctx, "kb-1")
		p.OnFetchComplete(ctx, "kb-1", 100, time.Second, nil)
		p.OnTransformComplete(ctx, 100, 240, time.Millisecond)
		p.OnExportStart(ctx, "svg")
		p.OnExportComplete(ctx, "svg", 2048, time.Second, nil)

		c := NoopCacheHooks{}
		c.OnCacheHit(ctx, "graph")
		c.OnCacheMiss(ctx, "render")
		c.OnCacheSet(ctx, "render", 1024)

		h := NoopHTTPHooks{}
		h.OnRequest(ctx, "GET", "kb.example.com", "/knowledge/graph")
		h.OnResponse(ctx, "GET", "kb.example.com", "/knowledge/graph", 200, time.Second)
		h.OnError(ctx, "GET", "kb.example.com", "/knowledge/graph", nil)
	})
}

type countingPipeline struct {
	NoopPipelineHooks
	fetches, exports int
	lastErr          error
}

func (c *countingPipeline) OnFetchStart(context.Context, string) { c.fetches++ }
func (c *countingPipeline) OnExportComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	c.exports++
	c.lastErr = err
}

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestInstallAndReset(t *testing.T) {
	Reset()
	defer Reset()

	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())

	p, c, h := &countingPipeline{}, &testCacheHooks{}, &testHTTPHooks{}
	Install(p, c, h)
	assert.Same(t, p, Pipeline())
	assert.Same(t, c, Cache())
	assert.Same(t, h, HTTP())

	Reset()
	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())
}

func TestNilHooksAreIgnored(t *testing.T) {
	Reset()
	defer Reset()

	p := &countingPipeline{}
	SetPipelineHooks(p)
	SetPipelineHooks(nil)
	Install(nil, nil, nil)

	assert.Same(t, p, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
}

func TestFanout(t *testing.T) {
	ctx := context.Background()
	a, b := &countingPipeline{}, &countingPipeline{}
	f := Fanout{a, NoopPipelineHooks{}, b}

	boom := errors.New("boom")
	f.OnFetchStart(ctx, "kb")
	f.OnTransformComplete(ctx, 1, 2, time.Millisecond)
	f.OnExportComplete(ctx, "svg", 10, time.Millisecond, boom)

	for _, c := range []*countingPipeline{a, b} {
		assert.Equal(t, 1, c.fetches)
		assert.Equal(t, 1, c.exports)
		assert.ErrorIs(t, c.lastErr, boom)
	}
}
