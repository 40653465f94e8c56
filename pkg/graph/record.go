package graph

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
)

// Record is an open JSON object from the knowledge graph API.
type Record map[string]any

// Well-known record keys.
const (
	KeyEntityType   = "entity_type"
	KeyEntityName   = "entity_name"
	KeyPageRank     = "pagerank"
	KeyDescription  = "description"
	KeySourceEntity = "source_entity"
	KeyTargetEntity = "target_entity"
	KeyWeight       = "weight"
)

// String returns the value at key coerced to a string. Missing and nil
// values report false.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	return stringify(v), true
}

// Text is [Record.String] without the presence flag.
func (r Record) Text(key string) string {
	s, _ := r.String(key)
	return s
}

// Number returns the value at key as a float64. Numbers, booleans and
// numeric strings convert; anything else reports false.
func (r Record) Number(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return toNumber(v)
}

// Truthy reports whether the value at key is set to something other than
// nil, false, zero, NaN or the empty string.
func (r Record) Truthy(key string) bool {
	switch v := r[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		f, ok := toNumber(v)
		if ok {
			return f != 0 && !math.IsNaN(f)
		}
		return true
	}
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
