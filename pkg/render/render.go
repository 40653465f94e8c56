package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/graph"
	"github.com/matzehuels/kgview/pkg/observability"
)

// Render exports g in format f.
func Render(ctx context.Context, g *graph.RenderGraph, f Format, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, string(f))
	start := time.Now()

	data, err := render(ctx, g, f, opts)
	hooks.OnExportComplete(ctx, string(f), len(data), time.Since(start), err)
	return data, err
}

func render(ctx context.Context, g *graph.RenderGraph, f Format, opts Options) ([]byte, error) {
	if g == nil {
		g = &graph.RenderGraph{Nodes: []graph.RenderNode{}, Edges: []graph.RenderEdge{}}
	}
	switch f {
	case FormatJSON:
		return graph.MarshalRenderGraph(g)
	case FormatYAML:
		var buf bytes.Buffer
		if err := EncodeYAML(&buf, g); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		dot, err := ToDOT(g, opts)
		return []byte(dot), err
	case FormatSVG:
		dot, err := ToDOT(g, opts)
		if err != nil {
			return nil, err
		}
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			if errors.GetCode(err) != "" {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "graphviz")
		}
		return svg, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
}

// Encode writes g to w in format f.
func Encode(ctx context.Context, w io.Writer, g *graph.RenderGraph, f Format, opts Options) error {
	data, err := Render(ctx, g, f, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// EncodeYAML writes g as YAML with the same field layout as the JSON form.
func EncodeYAML(w io.Writer, g *graph.RenderGraph) error {
	doc, err := plain(g)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// plain turns g into maps via its JSON encoding so custom field overlays
// apply identically in every format.
func plain(g *graph.RenderGraph) (map[string]any, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
