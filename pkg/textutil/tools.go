package textutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// DefaultRequiredBadge labels required parameters in [FormatTools].
const DefaultRequiredBadge = "required"

// Tool is an MCP-style tool description.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON schema of a tool's arguments.
type InputSchema struct {
	Type       string     `json:"type,omitempty"`
	Properties Properties `json:"properties"`
	Required   []string   `json:"required,omitempty"`
}

// Property is one schema property.
type Property struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// NamedProperty keeps a property with its key.
type NamedProperty struct {
	Name string
	Property
}

// Properties preserves the key order of a JSON schema "properties" object.
type Properties []NamedProperty

func (p *Properties) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}
	var out Properties
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var prop Property
		if err := dec.Decode(&prop); err != nil {
			return fmt.Errorf("properties.%s: %w", key, err)
		}
		out = append(out, NamedProperty{Name: key, Property: prop})
	}
	*p = out
	return nil
}

func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, np := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(np.Name)
		val, err := json.Marshal(np.Property)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Param is one display row of a tool's parameters.
type Param struct {
	Name          string `json:"name"`
	RequiredBadge string `json:"requiredBadge"`
	Type          string `json:"type"`
	Description   string `json:"description"`
}

// ToolView is a tool with its parameters flattened for display.
type ToolView struct {
	Tool
	Params []Param `json:"params"`
}

// FormatTools flattens each tool's schema properties into parameter rows
// in schema order. Required parameters carry badge ([DefaultRequiredBadge]
// when empty). No tools yields an empty, non-nil slice.
func FormatTools(tools []Tool, badge string) []ToolView {
	if badge == "" {
		badge = DefaultRequiredBadge
	}
	out := make([]ToolView, 0, len(tools))
	for _, t := range tools {
		params := make([]Param, 0, len(t.InputSchema.Properties))
		for _, p := range t.InputSchema.Properties {
			param := Param{Name: p.Name, Type: p.Type, Description: p.Description}
			if slices.Contains(t.InputSchema.Required, p.Name) {
				param.RequiredBadge = badge
			}
			params = append(params, param)
		}
		out = append(out, ToolView{Tool: t, Params: params})
	}
	return out
}
