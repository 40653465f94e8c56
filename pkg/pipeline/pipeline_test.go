package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kgview/pkg/api"
	"github.com/matzehuels/kgview/pkg/cache"
	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/graph"
	"github.com/matzehuels/kgview/pkg/render"
	"github.com/matzehuels/kgview/pkg/snapshot"
)

func samplePayload() *graph.Payload {
	return &graph.Payload{
		Nodes: []graph.Record{
			{"entity_name": "Ada", "entity_type": "person", "pagerank": 0.4},
			{"entity_name": "Engine", "entity_type": "machine"},
		},
		Edges: []graph.Record{
			{"source_entity": "Ada", "target_entity": "Engine", "weight": 6},
		},
	}
}

type stubFetcher struct {
	calls int
	resp  *api.GraphResponse
	err   error
}

func (s *stubFetcher) KnowledgeGraph(_ context.Context, _ string, _ bool) (*api.GraphResponse, error) {
	s.calls++
	return s.resp, s.err
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"payload", Options{Payload: &graph.Payload{}}, false},
		{"file", Options{File: "graph.json"}, false},
		{"kb", Options{KnowledgeID: "kb-1"}, false},
		{"none", Options{}, true},
		{"two sources", Options{File: "graph.json", KnowledgeID: "kb-1"}, true},
		{"bad kb", Options{KnowledgeID: "../etc"}, true},
		{"bad format", Options{KnowledgeID: "kb-1", Format: "png"}, true},
		{"yml alias", Options{KnowledgeID: "kb-1", Format: "yml"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	o := Options{Payload: &graph.Payload{}}
	require.NoError(t, o.Validate())
	assert.Equal(t, render.FormatJSON, o.Format)
}

func TestExecutePayload(t *testing.T) {
	r := NewRunner(Config{})
	res, err := r.Execute(context.Background(), Options{Payload: samplePayload()})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.NodeCount)
	assert.Equal(t, 1, res.Stats.EdgeCount)
	assert.Equal(t, 2, res.Stats.TypeCount)
	assert.Len(t, res.GraphHash, 64)
	assert.Nil(t, res.Progress)

	var decoded graph.RenderGraph
	require.NoError(t, json.Unmarshal(res.Artifact, &decoded))
	assert.Equal(t, "Ada", decoded.Nodes[0].ID)
}

func TestExecuteRenderCache(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(Config{Cache: cache.NewMemoryCache(16)})
	opts := Options{Payload: samplePayload(), Format: render.FormatDOT}

	first, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.RenderHit)

	second, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.Artifact, second.Artifact)

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.RenderHit)

	opts.Refresh = false
	opts.Format = render.FormatYAML
	other, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, other.CacheInfo.RenderHit, "format is part of the render key")
	assert.True(t, strings.Contains(string(other.Artifact), "nodes:"))
}

func TestExecuteFetcher(t *testing.T) {
	f := &stubFetcher{resp: &api.GraphResponse{
		ProcessingCount: 2, SuccessCount: 3, Total: 5,
		Graph: samplePayload(),
	}}
	repo := snapshot.NewMemoryRepository()
	r := NewRunner(Config{Fetcher: f, Snapshots: repo})

	res, err := r.Execute(context.Background(), Options{KnowledgeID: "kb-1", Snapshot: true})
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, &Progress{Processing: 2, Success: 3, Total: 5}, res.Progress)
	require.NotEmpty(t, res.SnapshotID)

	snap, err := repo.Latest(context.Background(), "kb-1")
	require.NoError(t, err)
	assert.Equal(t, res.SnapshotID, snap.ID)
	assert.Equal(t, snapshot.SourceAPI, snap.Source)
}

func TestExecuteFetcherErrors(t *testing.T) {
	r := NewRunner(Config{})
	_, err := r.Execute(context.Background(), Options{KnowledgeID: "kb-1"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	f := &stubFetcher{err: errors.New(errors.ErrCodeNotFound, "missing")}
	r = NewRunner(Config{Fetcher: f})
	_, err = r.Execute(context.Background(), Options{KnowledgeID: "kb-1"})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestExecuteFile(t *testing.T) {
	dir := t.TempDir()

	bare := filepath.Join(dir, "bare.json")
	data, _ := json.Marshal(samplePayload())
	require.NoError(t, os.WriteFile(bare, data, 0o644))

	wrapped := filepath.Join(dir, "envelope.json")
	env := `{"code":0,"msg":"ok","data":{"processingCount":0,"total":1,"graph":` + string(data) + `}}`
	require.NoError(t, os.WriteFile(wrapped, []byte(env), 0o644))

	failed := filepath.Join(dir, "failed.json")
	require.NoError(t, os.WriteFile(failed, []byte(`{"code":500,"msg":"boom","data":null}`), 0o644))

	r := NewRunner(Config{})
	ctx := context.Background()

	res, err := r.Execute(ctx, Options{File: bare})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.NodeCount)
	assert.Nil(t, res.Progress)

	res, err = r.Execute(ctx, Options{File: wrapped})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.NodeCount)
	require.NotNil(t, res.Progress)
	assert.Equal(t, int32(1), res.Progress.Total)

	_, err = r.Execute(ctx, Options{File: failed})
	assert.True(t, errors.Is(err, errors.ErrCodeUpstream))

	_, err = r.Execute(ctx, Options{File: filepath.Join(dir, "missing.json")})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestIsEnvelope(t *testing.T) {
	assert.True(t, isEnvelope([]byte(`{"code":0,"data":{}}`)))
	assert.False(t, isEnvelope([]byte(`{"nodes":[],"edges":[]}`)))
	assert.False(t, isEnvelope([]byte(`[1,2]`)))
}
