package graph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// Reference values computed by the web client for the same strings.
func TestColorForTypeReference(t *testing.T) {
	tests := []struct {
		in   string
		hash int64
		want string
	}{
		{"a", 97, "hsl(97, 77%, 67%)"},
		{"event", 96891546, "hsl(66, 66%, 56%)"},
		{"person", -991716523, "hsl(43, 63%, 53%)"},
		{"ORGANIZATION", -798763725, "hsl(45, 65%, 55%)"},
		{"organization", -3116045005, "hsl(205, 65%, 55%)"},
		{"technology concept", -2237870252, "hsl(92, 72%, 62%)"},
		{"地点", 720777, "hsl(57, 77%, 67%)"},
		{"😀x", 54959989, "hsl(229, 69%, 59%)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.hash, typeHash(tt.in), "hash(%q)", tt.in)
		assert.Equal(t, tt.want, ColorForType(tt.in), "color(%q)", tt.in)
	}
}

func TestColorForTypeFallback(t *testing.T) {
	assert.Equal(t, FallbackColor, ColorForType(""))
	assert.Equal(t, "#C6E5FF", FallbackColor)
}

func TestTypeColors(t *testing.T) {
	colors := TypeColors([]Record{
		{"entity_type": "person"},
		{"entity_type": ""},
		{},
		{"entity_type": 3.0},
		{"entity_type": "person"},
		{"entity_type": "event"},
	})
	assert.Equal(t, map[string]string{
		"person": ColorForType("person"),
		"event":  ColorForType("event"),
	}, colors)
}

func TestColorProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("deterministic", prop.ForAll(
		func(s string) bool {
			colorMemo.Purge()
			first := ColorForType(s)
			colorMemo.Purge()
			return first == ColorForType(s) && first == ColorForType(s)
		},
		gen.AnyString(),
	))

	properties.Property("components stay in range", prop.ForAll(
		func(s string) bool {
			h := typeHash(s)
			if h < 0 {
				h = -h
			}
			return h%360 < 360 && 60+h%20 < 80 && 50+h%20 < 70
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
