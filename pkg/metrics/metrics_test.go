package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kgview/pkg/observability"
)

func TestRegistryRecordsHooks(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.OnFetchComplete(ctx, "kb", 12, time.Second, nil)
	r.OnFetchComplete(ctx, "kb", 0, time.Second, errors.New("boom"))
	r.OnTransformComplete(ctx, 12, 3, time.Millisecond)
	r.OnExportComplete(ctx, "svg", 4096, time.Millisecond, nil)
	r.OnCacheHit(ctx, "render")
	r.OnCacheMiss(ctx, "render")
	r.OnCacheMiss(ctx, "render")
	r.OnResponse(ctx, "GET", "kb.local", "/graph", 200, time.Millisecond)
	r.OnError(ctx, "GET", "kb.local", "/graph", errors.New("refused"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.FetchesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FetchesTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.TransformsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ExportsTotal.WithLabelValues("svg", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.CacheRequestsTotal.WithLabelValues("render", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.UpstreamRequestsTotal.WithLabelValues("kb.local", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.UpstreamErrorsTotal.WithLabelValues("kb.local")))
}

func TestHandlerServesMetrics(t *testing.T) {
	r := NewRegistry()
	r.OnTransformComplete(context.Background(), 1, 1, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "kgview_transforms_total 1"))
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	r := NewRegistry()
	r.Install()
	assert.Same(t, r, observability.Pipeline())
	assert.Same(t, r, observability.Cache())
	assert.Same(t, r, observability.HTTP())
}
