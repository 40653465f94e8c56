package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/graph"
)

// Layouts are the Graphviz engines [ToDOT] may select.
var Layouts = []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi"}

// DefaultLayout suits undirected knowledge graphs.
const DefaultLayout = "neato"

// shapes are the Graphviz node shapes a record's type may select.
var shapes = map[string]bool{
	"box": true, "polygon": true, "ellipse": true, "oval": true, "circle": true,
	"point": true, "egg": true, "triangle": true, "plaintext": true, "plain": true,
	"diamond": true, "trapezium": true, "parallelogram": true, "house": true,
	"pentagon": true, "hexagon": true, "septagon": true, "octagon": true,
	"doublecircle": true, "doubleoctagon": true, "tripleoctagon": true,
	"invtriangle": true, "invtrapezium": true, "invhouse": true, "rect": true,
	"rectangle": true, "square": true, "star": true, "none": true,
	"underline": true, "cylinder": true, "note": true, "tab": true,
	"folder": true, "box3d": true, "component": true, "Mdiamond": true,
	"Msquare": true, "Mcircle": true,
}

// pointsPerInch converts node diameters in canvas pixels to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT export.
type Options struct {
	// Directed emits a digraph with arrows.
	Directed bool
	// Layout picks the Graphviz engine; empty means DefaultLayout.
	Layout string
	// EdgeLabels prints edge labels.
	EdgeLabels bool
}

func (o Options) layout() (string, error) {
	if o.Layout == "" {
		return DefaultLayout, nil
	}
	if !slices.Contains(Layouts, o.Layout) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown layout %q", o.Layout)
	}
	return o.Layout, nil
}

// ToDOT converts g to a Graphviz document. Nodes are circles filled with
// their type colour and sized from the render size; edge pen width follows
// the computed line width.
func ToDOT(g *graph.RenderGraph, opts Options) (string, error) {
	layout, err := opts.layout()
	if err != nil {
		return "", err
	}
	kind, arrow := "graph", "--"
	if opts.Directed {
		kind, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	fmt.Fprintf(&buf, "  layout=%s;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [style=filled, fixedsize=true, fontsize=8, penwidth=0];\n")
	buf.WriteString("  edge [color=\"#99ADD1\"];\n")
	buf.WriteString("\n")

	if g != nil {
		for _, n := range g.Nodes {
			fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(nodeAttrs(n), ", "))
		}
		buf.WriteString("\n")
		for _, e := range g.Edges {
			attrs := edgeAttrs(e, opts.EdgeLabels)
			if len(attrs) == 0 {
				fmt.Fprintf(&buf, "  %s %s %s;\n", quote(e.Source), arrow, quote(e.Target))
				continue
			}
			fmt.Fprintf(&buf, "  %s %s %s [%s];\n", quote(e.Source), arrow, quote(e.Target), strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeAttrs(n graph.RenderNode) []string {
	attrs := []string{
		"label=" + quote(n.Label),
		fmt.Sprintf("width=%.3f", n.Size/pointsPerInch),
	}
	shape := n.Type
	if !shapes[shape] {
		shape = graph.NodeShape
	}
	attrs = append(attrs, "shape="+shape)
	if n.Style.Fill != "" {
		attrs = append(attrs, "fillcolor="+quote(HexColor(n.Style.Fill)))
	}
	if t := n.Extra.Text(graph.KeyEntityType); t != "" {
		attrs = append(attrs, "tooltip="+quote(t))
	}
	return attrs
}

func edgeAttrs(e graph.RenderEdge, labels bool) []string {
	var attrs []string
	if e.Style != nil && e.Style.LineWidth > 0 {
		attrs = append(attrs, fmt.Sprintf("penwidth=%g", e.Style.LineWidth))
	}
	if labels && e.Label != "" {
		attrs = append(attrs, "label="+quote(e.Label))
	}
	return attrs
}

// quote renders s as a DOT double-quoted string. DOT knows only the \" and
// \\ escapes; other control characters become spaces.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
