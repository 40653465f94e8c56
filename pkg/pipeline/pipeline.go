// Package pipeline runs the kgview load → transform → export pipeline.
//
// The same [Runner] backs the CLI and the HTTP server so both produce
// identical artifacts and share cache keys.
//
// # Stages
//
//  1. Load: take an in-memory payload, read a payload file, or fetch a
//     knowledge base from the backend
//  2. Transform: convert the payload into a render graph
//  3. Export: encode the render graph (json, yaml, dot, svg), cached by
//     the hash of the render graph and the export options
//
// A snapshot of the render graph is archived when a repository is
// configured and the options ask for it.
//
// # Usage
//
//	runner := pipeline.NewRunner(pipeline.Config{Fetcher: client, Cache: c})
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    KnowledgeID: "kb-1",
//	    Format:      render.FormatSVG,
//	})
//	os.WriteFile("graph.svg", res.Artifact, 0o644)
package pipeline

import (
	"time"

	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/graph"
	"github.com/matzehuels/kgview/pkg/render"
	"github.com/matzehuels/kgview/pkg/snapshot"
)

// DefaultRenderTTL is how long exported artifacts stay cached.
const DefaultRenderTTL = 24 * time.Hour

// Options selects the input and output of one pipeline run. Exactly one of
// Payload, File and KnowledgeID must be set.
type Options struct {
	Payload     *graph.Payload
	File        string
	KnowledgeID string

	// Format defaults to json.
	Format render.Format
	Render render.Options
	Graph  graph.Options

	// Refresh bypasses caches.
	Refresh bool
	// Snapshot archives the render graph in the configured repository.
	Snapshot bool
}

// Validate checks the options and fills defaults.
func (o *Options) Validate() error {
	set := 0
	for _, ok := range []bool{o.Payload != nil, o.File != "", o.KnowledgeID != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of payload, file or knowledge id is required")
	}
	if o.KnowledgeID != "" {
		if err := errors.ValidateKnowledgeID(o.KnowledgeID); err != nil {
			return err
		}
	}
	if o.Format == "" {
		o.Format = render.FormatJSON
	}
	f, err := render.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	return nil
}

func (o *Options) source() snapshot.Source {
	switch {
	case o.KnowledgeID != "":
		return snapshot.SourceAPI
	case o.File != "":
		return snapshot.SourceFile
	}
	return snapshot.SourceHTTP
}

// Progress mirrors the backend's document processing counters.
type Progress struct {
	Processing int32 `json:"processing"`
	Success    int32 `json:"success"`
	Fail       int32 `json:"fail"`
	Total      int32 `json:"total"`
}

// Stats times each stage.
type Stats struct {
	LoadTime      time.Duration `json:"load_time"`
	TransformTime time.Duration `json:"transform_time"`
	ExportTime    time.Duration `json:"export_time"`
	graph.Stats
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	RenderHit bool `json:"render_hit"`
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	Graph      *graph.RenderGraph `json:"graph"`
	GraphHash  string             `json:"graph_hash"`
	Format     render.Format      `json:"format"`
	Artifact   []byte             `json:"-"`
	Progress   *Progress          `json:"progress,omitempty"`
	SnapshotID string             `json:"snapshot_id,omitempty"`
	Stats      Stats              `json:"stats"`
	CacheInfo  CacheInfo          `json:"cache"`
}
