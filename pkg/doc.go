// Package pkg provides the libraries behind kgview.
//
// # Overview
//
// kgview turns knowledge-base graph payloads into render-ready graphs and
// supplies the display formatting a knowledge-base front end needs. The pkg
// directory is organized into these areas:
//
//  1. [graph], [format], [debounce] - the core transforms and helpers
//  2. [render] - JSON, YAML, DOT and SVG export of render graphs
//  3. [pipeline] - orchestration (load → transform → export → snapshot)
//  4. [cache], [snapshot], [store] - storage backends
//  5. [api], [httputil] - the knowledge-base HTTP client
//  6. [config], [errors], [observability], [metrics] - ambient concerns
//
// # Architecture
//
//	Knowledge base API / payload file
//	         ↓
//	    [api] package (fetch and unwrap the response envelope)
//	         ↓
//	    [graph] package (Transform into a RenderGraph)
//	         ↓
//	    [render] package (json, yaml, dot, svg)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/kgview/pkg/graph"
//	    "github.com/matzehuels/kgview/pkg/render"
//	)
//
//	p, _ := graph.UnmarshalPayload(data)
//	g := graph.Transform(p, graph.Options{})
//	svg, _ := render.Render(context.Background(), g, render.FormatSVG, render.Options{})
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/graph
// [format]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/format
// [debounce]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/debounce
// [render]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/cache
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/snapshot
// [store]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/store
// [api]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/api
// [httputil]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/observability
// [metrics]: https://pkg.go.dev/github.com/matzehuels/kgview/pkg/metrics
package pkg
