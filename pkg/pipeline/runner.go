package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kgview/pkg/api"
	"github.com/matzehuels/kgview/pkg/cache"
	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/graph"
	"github.com/matzehuels/kgview/pkg/observability"
	"github.com/matzehuels/kgview/pkg/render"
	"github.com/matzehuels/kgview/pkg/snapshot"
)

// Fetcher loads the graph of a knowledge base. *api.Client implements it.
type Fetcher interface {
	KnowledgeGraph(ctx context.Context, kbID string, refresh bool) (*api.GraphResponse, error)
}

// Config wires a [Runner]. Every field is optional.
type Config struct {
	Fetcher   Fetcher
	Cache     cache.Cache
	Keyer     cache.Keyer
	Snapshots snapshot.Repository
	Logger    *log.Logger
	// RenderTTL defaults to DefaultRenderTTL.
	RenderTTL time.Duration
}

// Runner executes the pipeline with caching.
//
// A Runner holds no per-run state, so one value can serve concurrent
// requests with different options.
type Runner struct {
	Fetcher   Fetcher
	Cache     cache.Cache
	Keyer     cache.Keyer
	Snapshots snapshot.Repository
	Logger    *log.Logger
	RenderTTL time.Duration
}

// NewRunner fills defaults: a NullCache, the DefaultKeyer and log.Default.
func NewRunner(cfg Config) *Runner {
	r := &Runner{
		Fetcher:   cfg.Fetcher,
		Cache:     cfg.Cache,
		Keyer:     cfg.Keyer,
		Snapshots: cfg.Snapshots,
		Logger:    cfg.Logger,
		RenderTTL: cfg.RenderTTL,
	}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	if r.RenderTTL <= 0 {
		r.RenderTTL = DefaultRenderTTL
	}
	return r
}

// Execute runs load → transform → export and optionally archives a snapshot.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	res := &Result{Format: opts.Format}

	start := time.Now()
	payload, progress, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Progress = progress
	res.Stats.LoadTime = time.Since(start)

	start = time.Now()
	g := r.Transform(ctx, payload, opts.Graph)
	res.Graph = g
	res.Stats.TransformTime = time.Since(start)
	res.Stats.Stats = g.Stats()

	hash, err := cache.HashJSON(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash render graph")
	}
	res.GraphHash = hash

	start = time.Now()
	artifact, hit, err := r.Export(ctx, g, hash, opts)
	if err != nil {
		return nil, err
	}
	res.Artifact = artifact
	res.CacheInfo.RenderHit = hit
	res.Stats.ExportTime = time.Since(start)

	r.Logger.Info("transformed graph",
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"format", opts.Format,
		"cached", hit)

	if opts.Snapshot && r.Snapshots != nil {
		snap := snapshot.New(opts.KnowledgeID, opts.source(), g)
		if err := r.Snapshots.Save(ctx, snap); err != nil {
			return nil, err
		}
		res.SnapshotID = snap.ID
		r.Logger.Debug("saved snapshot", "id", snap.ID, "kb", opts.KnowledgeID)
	}
	return res, nil
}

// Load resolves the input payload. Progress is nil unless the payload came
// wrapped in a backend envelope.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Payload, *Progress, error) {
	switch {
	case opts.Payload != nil:
		return opts.Payload, nil, nil
	case opts.File != "":
		return loadFile(opts.File)
	}
	if r.Fetcher == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidConfig, "no backend configured for knowledge base %s", opts.KnowledgeID)
	}
	resp, err := r.Fetcher.KnowledgeGraph(ctx, opts.KnowledgeID, opts.Refresh)
	if err != nil {
		return nil, nil, err
	}
	if !resp.Ready() {
		r.Logger.Warn("knowledge base still processing",
			"kb", opts.KnowledgeID,
			"processing", resp.ProcessingCount,
			"total", resp.Total)
	}
	return resp.Graph, progressOf(resp), nil
}

// Transform converts p and reports it to the pipeline hooks.
func (r *Runner) Transform(ctx context.Context, p *graph.Payload, opts graph.Options) *graph.RenderGraph {
	start := time.Now()
	g := graph.Transform(p, opts)
	observability.Pipeline().OnTransformComplete(ctx, len(g.Nodes), len(g.Edges), time.Since(start))
	return g
}

// Export renders g in opts.Format, serving repeated requests from the
// render cache. hash must be the content hash of g.
func (r *Runner) Export(ctx context.Context, g *graph.RenderGraph, hash string, opts Options) ([]byte, bool, error) {
	key := r.Keyer.RenderKey(hash, cache.RenderKeyOpts{
		Format:   string(opts.Format),
		Directed: opts.Render.Directed,
		Layout:   opts.Render.Layout,
		Labels:   opts.Render.EdgeLabels,
	})

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("render cache read failed", "key", key, "err", err)
		} else if hit {
			return data, true, nil
		}
	}

	data, err := render.Render(ctx, g, opts.Format, opts.Render)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, r.RenderTTL); err != nil {
		r.Logger.Warn("render cache write failed", "key", key, "err", err)
	}
	return data, false, nil
}

func loadFile(path string) (*graph.Payload, *Progress, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeNotFound, err, "payload file %s", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	if isEnvelope(data) {
		resp, err := api.DecodeEnvelope(data)
		if err != nil {
			return nil, nil, err
		}
		return resp.Graph, progressOf(resp), nil
	}
	p, err := graph.UnmarshalPayload(data)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "%s", path)
	}
	return p, nil, nil
}

// isEnvelope reports whether data is a {code,msg,data} wrapper rather than a
// bare {nodes,edges} payload.
func isEnvelope(data []byte) bool {
	var probe map[string]json.RawMessage
	if json.Unmarshal(data, &probe) != nil {
		return false
	}
	_, hasCode := probe["code"]
	_, hasData := probe["data"]
	return hasCode && hasData
}

func progressOf(r *api.GraphResponse) *Progress {
	return &Progress{
		Processing: r.ProcessingCount,
		Success:    r.SuccessCount,
		Fail:       r.FailCount,
		Total:      r.Total,
	}
}
