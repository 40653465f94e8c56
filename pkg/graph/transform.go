package graph

import (
	"strconv"
)

// Default sizing for nodes.
const (
	DefaultNodeSize = 20
	MinNodeSize     = 15
	MaxNodeSize     = 30
)

// Line width bounds for weighted edges.
const (
	MinLineWidth = 1
	MaxLineWidth = 5
)

// Options overrides how node and edge attributes are computed. Every
// function receives the source record and its position in the input; a nil
// function selects the default described in the package documentation.
type Options struct {
	NodeID    func(n Record, i int) string
	NodeLabel func(n Record, i int) string
	NodeSize  func(n Record, i int) float64
	NodeColor func(n Record, i int) string
	EdgeID    func(e Record, i int) string
	EdgeLabel func(e Record, i int) string
}

// withDefaults fills unset functions. colors is the per-call type colour map.
func (o Options) withDefaults(colors map[string]string) Options {
	if o.NodeID == nil {
		o.NodeID = func(n Record, _ int) string { return n.Text(KeyEntityName) }
	}
	if o.NodeLabel == nil {
		o.NodeLabel = func(n Record, _ int) string { return n.Text(KeyEntityName) }
	}
	if o.NodeSize == nil {
		o.NodeSize = DefaultSize
	}
	if o.NodeColor == nil {
		o.NodeColor = func(n Record, _ int) string {
			t, _ := n[KeyEntityType].(string)
			if c, ok := colors[t]; ok {
				return c
			}
			return FallbackColor
		}
	}
	if o.EdgeID == nil {
		o.EdgeID = func(_ Record, i int) string { return "e" + strconv.Itoa(i) }
	}
	if o.EdgeLabel == nil {
		o.EdgeLabel = func(e Record, _ int) string { return e.Text(KeyDescription) }
	}
	return o
}

// DefaultSize scales a node by its pagerank, or returns [DefaultNodeSize]
// when the record has no usable pagerank.
func DefaultSize(n Record, _ int) float64 {
	if !n.Truthy(KeyPageRank) {
		return DefaultNodeSize
	}
	pr, ok := n.Number(KeyPageRank)
	if !ok {
		return DefaultNodeSize
	}
	return clamp(pr*100, MinNodeSize, MaxNodeSize)
}

// Transform converts a payload into a render graph. A nil payload yields
// an empty graph. The payload is never modified.
func Transform(p *Payload, opts Options) *RenderGraph {
	if p == nil {
		return &RenderGraph{Nodes: []RenderNode{}, Edges: []RenderEdge{}}
	}
	opts = opts.withDefaults(TypeColors(p.Nodes))

	g := &RenderGraph{
		Nodes: make([]RenderNode, 0, len(p.Nodes)),
		Edges: make([]RenderEdge, 0, len(p.Edges)),
	}
	for i, n := range p.Nodes {
		g.Nodes = append(g.Nodes, transformNode(n, i, opts))
	}
	for i, e := range p.Edges {
		g.Edges = append(g.Edges, transformEdge(e, i, opts))
	}
	return g
}

func transformNode(n Record, i int, opts Options) RenderNode {
	out := RenderNode{
		ID:    opts.NodeID(n, i),
		Label: opts.NodeLabel(n, i),
		Type:  NodeShape,
		Size:  opts.NodeSize(n, i),
		Style: Style{Fill: opts.NodeColor(n, i)},
		Extra: n.Clone(),
	}

	if s, ok := n.String("id"); ok {
		out.ID = s
	}
	if s, ok := n.String("label"); ok {
		out.Label = s
	}
	if s, ok := n.String("type"); ok {
		out.Type = s
	}
	if f, ok := n.Number("size"); ok {
		out.Size = f
	}
	if _, ok := n["style"]; ok {
		out.Style = recordStyle(n)
	}
	return out
}

func transformEdge(e Record, i int, opts Options) RenderEdge {
	out := RenderEdge{
		ID:     opts.EdgeID(e, i),
		Source: e.Text(KeySourceEntity),
		Target: e.Text(KeyTargetEntity),
		Label:  opts.EdgeLabel(e, i),
		Extra:  e.Clone(),
	}
	if e.Truthy(KeyWeight) {
		if w, ok := e.Number(KeyWeight); ok {
			out.Style = &Style{LineWidth: clamp(w/2, MinLineWidth, MaxLineWidth)}
		}
	}

	if s, ok := e.String("id"); ok {
		out.ID = s
	}
	if s, ok := e.String("source"); ok {
		out.Source = s
	}
	if s, ok := e.String("target"); ok {
		out.Target = s
	}
	if s, ok := e.String("label"); ok {
		out.Label = s
	}
	if _, ok := e["style"]; ok {
		s := recordStyle(e)
		out.Style = &s
	}
	return out
}

// recordStyle reads the typed view of a record's own style object.
func recordStyle(r Record) Style {
	var s Style
	m, ok := r["style"].(map[string]any)
	if !ok {
		return s
	}
	style := Record(m)
	s.Fill = style.Text("fill")
	s.LineWidth, _ = style.Number("lineWidth")
	return s
}
