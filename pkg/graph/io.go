package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadPayloadFile reads a JSON payload from path.
func ReadPayloadFile(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPayload(f)
}

// ReadPayload decodes a JSON payload. Both a bare {"nodes", "edges"}
// object and the API's {"graph": {...}} wrapper are accepted.
func ReadPayload(r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalPayload(data)
}

// UnmarshalPayload decodes a JSON payload from data. See [ReadPayload].
func UnmarshalPayload(data []byte) (*Payload, error) {
	var probe struct {
		Graph *Payload `json:"graph"`
		Payload
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if probe.Graph != nil && probe.Nodes == nil && probe.Edges == nil {
		return probe.Graph, nil
	}
	p := probe.Payload
	return &p, nil
}

// MarshalRenderGraph encodes g as indented JSON.
func MarshalRenderGraph(g *RenderGraph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteRenderGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRenderGraph writes g as indented JSON to w.
func WriteRenderGraph(g *RenderGraph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// UnmarshalRenderGraph decodes a render graph produced by
// [MarshalRenderGraph].
func UnmarshalRenderGraph(data []byte) (*RenderGraph, error) {
	var g RenderGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &g, nil
}
