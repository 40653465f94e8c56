package graph

import (
	"fmt"
	"unicode/utf16"

	lru "github.com/hashicorp/golang-lru/v2"
)

// FallbackColor is the fill used for records without an entity type.
const FallbackColor = "#C6E5FF"

const colorMemoSize = 1024

// colorMemo caches derived colours. ColorForType is pure, so entries never
// go stale.
var colorMemo, _ = lru.New[string, string](colorMemoSize)

// ColorForType derives an HSL colour string from an entity type.
//
// The hash walks the UTF-16 code units of t and computes
// h = c + ((h << 5) - h), where the shift operates on h truncated to a
// signed 32-bit integer and the subtraction and addition do not wrap. This
// is exactly what the web client evaluates, so both sides agree on every
// colour, including long strings whose hash leaves the int32 range.
//
// hue = |h| mod 360, saturation = 60 + |h| mod 20, lightness = 50 + |h| mod 20.
// An empty t returns [FallbackColor].
func ColorForType(t string) string {
	if t == "" {
		return FallbackColor
	}
	if c, ok := colorMemo.Get(t); ok {
		return c
	}
	h := typeHash(t)
	if h < 0 {
		h = -h
	}
	c := fmt.Sprintf("hsl(%d, %d%%, %d%%)", h%360, 60+h%20, 50+h%20)
	colorMemo.Add(t, c)
	return c
}

// typeHash is the string hash behind [ColorForType]. Only the shift wraps to
// int32; the running sum does not, so results can leave the int32 range.
func typeHash(s string) int64 {
	var h int64
	for _, c := range utf16.Encode([]rune(s)) {
		shifted := int64(toInt32(h) << 5)
		h = int64(c) + shifted - h
	}
	return h
}

// toInt32 truncates v to a signed 32-bit integer modulo 2^32.
func toInt32(v int64) int32 {
	return int32(uint32(v))
}

// TypeColors scans nodes in order and assigns each distinct non-empty
// entity type its colour.
func TypeColors(nodes []Record) map[string]string {
	colors := make(map[string]string)
	for _, n := range nodes {
		t, _ := n[KeyEntityType].(string)
		if t == "" {
			continue
		}
		if _, ok := colors[t]; !ok {
			colors[t] = ColorForType(t)
		}
	}
	return colors
}
