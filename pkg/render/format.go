package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/kgview/pkg/errors"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatDOT, FormatSVG}

// ParseFormat accepts a format name case-insensitively; "yml" is yaml.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want json, yaml, dot or svg)", s)
	}
	return f, nil
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "application/json"
	}
}

// Ext returns the file extension for f, with the dot.
func (f Format) Ext() string { return "." + string(f) }
