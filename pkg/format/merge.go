package format

import (
	"strconv"
)

// DeepMerge merges source into target and returns target.
//
// For every key in source: a map or slice value is merged recursively into
// target's slot, replacing the slot with a fresh map when it does not
// already hold a map or slice; any other value (including nil) overwrites
// the slot. Slices are merged by index, never concatenated, so a shorter
// source list only updates the leading elements of a longer target list.
//
// A nil target is allocated.
func DeepMerge(target, source map[string]any) map[string]any {
	if target == nil {
		target = make(map[string]any, len(source))
	}
	for k, v := range source {
		target[k] = mergeValue(target[k], v)
	}
	return target
}

// mergeValue returns the new value for a slot currently holding dst after
// merging src into it.
func mergeValue(dst, src any) any {
	if !isContainer(src) {
		return src
	}
	if !isContainer(dst) {
		dst = map[string]any{}
	}
	eachEntry(src, func(key string, v any) {
		dst = setEntry(dst, key, v)
	})
	return dst
}

func isContainer(v any) bool {
	switch c := v.(type) {
	case map[string]any:
		return c != nil
	case []any:
		return c != nil
	}
	return false
}

// eachEntry visits the entries of a container in a stable order for slices.
func eachEntry(c any, fn func(key string, v any)) {
	switch c := c.(type) {
	case map[string]any:
		for k, v := range c {
			fn(k, v)
		}
	case []any:
		for i, v := range c {
			fn(strconv.Itoa(i), v)
		}
	}
}

// setEntry merges v into container c under key and returns the container,
// which may be a new value when a slice grows or has to become a map.
func setEntry(c any, key string, v any) any {
	switch c := c.(type) {
	case map[string]any:
		c[key] = mergeValue(c[key], v)
		return c
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 {
			m := make(map[string]any, len(c)+1)
			for j, e := range c {
				m[strconv.Itoa(j)] = e
			}
			m[key] = mergeValue(nil, v)
			return m
		}
		for len(c) <= i {
			c = append(c, nil)
		}
		c[i] = mergeValue(c[i], v)
		return c
	}
	return c
}
