package graph

import (
	"encoding/json"
	"maps"
)

// NodeShape is the shape every node is drawn with unless a record says
// otherwise.
const NodeShape = "circle"

// Payload is the raw graph returned by the knowledge graph API.
type Payload struct {
	Directed   bool     `json:"directed,omitempty" bson:"directed,omitempty"`
	MultiGraph bool     `json:"mutigraph,omitempty" bson:"mutigraph,omitempty"`
	Nodes      []Record `json:"nodes" bson:"nodes"`
	Edges      []Record `json:"edges" bson:"edges"`
}

// RenderGraph is the render-ready graph produced by [Transform].
type RenderGraph struct {
	Nodes []RenderNode `json:"nodes" bson:"nodes"`
	Edges []RenderEdge `json:"edges" bson:"edges"`
}

// Style holds the visual attributes the graph canvas reads.
type Style struct {
	Fill      string  `json:"fill,omitempty" bson:"fill,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty" bson:"lineWidth,omitempty"`
}

// RenderNode is a node with computed visual attributes. Extra holds the
// original record and is laid over the computed fields when encoded.
type RenderNode struct {
	ID    string
	Label string
	Type  string
	Size  float64
	Style Style
	Extra Record
}

// RenderEdge is an edge with computed attributes. Style is nil when the
// source edge has no weight.
type RenderEdge struct {
	ID     string
	Source string
	Target string
	Label  string
	Style  *Style
	Extra  Record
}

// Stats summarises a render graph.
type Stats struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
	TypeCount int `json:"type_count"`
}

// Empty reports whether the graph has no nodes and no edges.
func (g *RenderGraph) Empty() bool {
	return g == nil || (len(g.Nodes) == 0 && len(g.Edges) == 0)
}

// Stats counts nodes, edges and distinct entity types.
func (g *RenderGraph) Stats() Stats {
	if g == nil {
		return Stats{}
	}
	types := make(map[string]struct{})
	for _, n := range g.Nodes {
		if t := n.Extra.Text(KeyEntityType); t != "" {
			types[t] = struct{}{}
		}
	}
	return Stats{NodeCount: len(g.Nodes), EdgeCount: len(g.Edges), TypeCount: len(types)}
}

// Fields returns the encoded form of n: computed attributes overlaid with
// the original record.
func (n RenderNode) Fields() map[string]any {
	out := map[string]any{
		"id":    n.ID,
		"label": n.Label,
		"type":  n.Type,
		"size":  n.Size,
		"style": n.Style,
	}
	maps.Copy(out, n.Extra)
	return out
}

// MarshalJSON implements json.Marshaler.
func (n RenderNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Fields())
}

// UnmarshalJSON implements json.Unmarshaler. Known attributes populate the
// typed fields; everything else, and known keys whose type does not fit,
// stay in Extra.
func (n *RenderNode) UnmarshalJSON(data []byte) error {
	var raw Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = RenderNode{}
	n.ID = takeString(raw, "id")
	n.Label = takeString(raw, "label")
	n.Type = takeString(raw, "type")
	if f, ok := raw["size"].(float64); ok {
		n.Size = f
		delete(raw, "size")
	}
	if s, ok := takeStyle(raw); ok {
		n.Style = s
	}
	if len(raw) > 0 {
		n.Extra = raw
	}
	return nil
}

// Fields returns the encoded form of e: computed attributes overlaid with
// the original record.
func (e RenderEdge) Fields() map[string]any {
	out := map[string]any{
		"id":     e.ID,
		"source": e.Source,
		"target": e.Target,
		"label":  e.Label,
	}
	if e.Style != nil {
		out["style"] = *e.Style
	}
	maps.Copy(out, e.Extra)
	return out
}

// MarshalJSON implements json.Marshaler.
func (e RenderEdge) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *RenderEdge) UnmarshalJSON(data []byte) error {
	var raw Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = RenderEdge{}
	e.ID = takeString(raw, "id")
	e.Source = takeString(raw, "source")
	e.Target = takeString(raw, "target")
	e.Label = takeString(raw, "label")
	if s, ok := takeStyle(raw); ok {
		e.Style = &s
	}
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

func takeString(raw Record, key string) string {
	s, ok := raw[key].(string)
	if ok {
		delete(raw, key)
	}
	return s
}

func takeStyle(raw Record) (Style, bool) {
	m, ok := raw["style"].(map[string]any)
	if !ok {
		return Style{}, false
	}
	var s Style
	for k, v := range m {
		switch k {
		case "fill":
			if s.Fill, ok = v.(string); !ok {
				return Style{}, false
			}
		case "lineWidth":
			if s.LineWidth, ok = v.(float64); !ok {
				return Style{}, false
			}
		default:
			return Style{}, false
		}
	}
	delete(raw, "style")
	return s, true
}
