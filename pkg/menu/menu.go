// Package menu resolves navigation targets from a permission-gated menu
// tree: the first page a user may open after login, and the menu entry
// that should be highlighted for the current path.
package menu

import "strings"

// NotFoundPath is returned when no menu entry is permitted.
const NotFoundPath = "/404"

// Item is one menu entry. Items without a path are section headers.
type Item struct {
	Index    string `json:"index" yaml:"index"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Perm     string `json:"perm,omitempty" yaml:"perm,omitempty"`
	Children []Item `json:"children,omitempty" yaml:"children,omitempty"`
}

// Checker decides whether the current user holds a permission.
type Checker interface {
	Allowed(perm string) bool
}

// PermSet is a [Checker] over a fixed set of granted permissions. The empty
// permission is always allowed.
type PermSet map[string]struct{}

// NewPermSet grants perms.
func NewPermSet(perms ...string) PermSet {
	s := make(PermSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

func (s PermSet) Allowed(perm string) bool {
	if perm == "" {
		return true
	}
	_, ok := s[perm]
	return ok
}

// CheckerFunc adapts a function to [Checker].
type CheckerFunc func(perm string) bool

func (f CheckerFunc) Allowed(perm string) bool { return f(perm) }

// FirstPermittedPath returns the path of the first permitted item in
// depth-first order. The first permitted item with children decides the
// result alone: its subtree is searched and, when nothing inside is
// permitted, NotFoundPath is returned without looking at later siblings.
// An empty top-level menu yields "".
func FirstPermittedPath(items []Item, c Checker) string {
	if len(items) == 0 {
		return ""
	}
	return firstPermitted(items, c)
}

func firstPermitted(items []Item, c Checker) string {
	path := ""
	for _, it := range items {
		if it.Path == "" || !c.Allowed(it.Perm) {
			continue
		}
		if len(it.Children) > 0 {
			path = firstPermitted(it.Children, c)
		} else {
			path = it.Path
		}
		break
	}
	if path == "" {
		return NotFoundPath
	}
	return path
}

// CurrentIndex returns the index of the menu entry to highlight for path.
// An item matches when path+"/" contains item.Path+"/"; the last match in
// traversal order wins. Children are only searched below items that do
// not match themselves. No match yields "".
func CurrentIndex(path string, items []Item) string {
	index := ""
	var walk func([]Item)
	walk = func(list []Item) {
		for _, it := range list {
			if it.Path != "" && strings.Contains(path+"/", it.Path+"/") {
				index = it.Index
			} else if len(it.Children) > 0 {
				walk(it.Children)
			}
		}
	}
	walk(items)
	return index
}

// Walk visits every item depth-first with its depth, stopping early when
// fn returns false.
func Walk(items []Item, fn func(it Item, depth int) bool) {
	var walk func([]Item, int) bool
	walk = func(list []Item, depth int) bool {
		for _, it := range list {
			if !fn(it, depth) {
				return false
			}
			if !walk(it.Children, depth+1) {
				return false
			}
		}
		return true
	}
	walk(items, 0)
}
