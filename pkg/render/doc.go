// Package render exports render graphs produced by package graph.
//
// # Formats
//
//   - json: the render graph as the front-end canvas consumes it
//   - yaml: the same document as YAML
//   - dot:  a Graphviz DOT document (see [ToDOT])
//   - svg:  the DOT document laid out by Graphviz (see [RenderSVG])
//
// [Render] dispatches on a [Format] and reports the export through the
// observability pipeline hooks:
//
//	data, err := render.Render(ctx, g, render.FormatSVG, render.Options{})
//
// Node colours arrive as CSS hsl() strings; [ToDOT] converts them to hex
// because Graphviz has no HSL colour syntax.
package render
