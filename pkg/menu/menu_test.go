package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var sample = []Item{
	{Index: "1", Path: "/knowledge", Perm: "knowledge.view", Children: []Item{
		{Index: "1-1", Path: "/knowledge/list", Perm: "knowledge.list"},
		{Index: "1-2", Path: "/knowledge/graph", Perm: "knowledge.graph"},
	}},
	{Index: "2", Path: "/model", Perm: "model.view"},
	{Index: "3", Path: "/settings"},
}

func TestFirstPermittedPath(t *testing.T) {
	tests := []struct {
		name  string
		perms []string
		want  string
	}{
		{"nested first permitted", []string{"knowledge.view", "knowledge.graph"}, "/knowledge/graph"},
		{"parent without permitted children stops search", []string{"knowledge.view", "model.view"}, NotFoundPath},
		{"skips unpermitted parent", []string{"model.view"}, "/model"},
		{"empty perm always allowed", nil, "/settings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstPermittedPath(sample, NewPermSet(tt.perms...)))
		})
	}
}

func TestFirstPermittedPathEdges(t *testing.T) {
	assert.Equal(t, "", FirstPermittedPath(nil, NewPermSet()))

	denyAll := CheckerFunc(func(string) bool { return false })
	assert.Equal(t, NotFoundPath, FirstPermittedPath(sample, denyAll))

	headersOnly := []Item{{Index: "h", Children: []Item{{Index: "h-1", Path: "/x"}}}}
	assert.Equal(t, NotFoundPath, FirstPermittedPath(headersOnly, NewPermSet()))
}

func TestCurrentIndex(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/model", "2"},
		{"/model/detail/7", "2"},
		{"/knowledge/graph", "1"},
		{"/settings", "3"},
		{"/modeling", ""},
		{"/unknown", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CurrentIndex(tt.path, sample), tt.path)
	}
}

func TestCurrentIndexDescendsOnlyIntoNonMatching(t *testing.T) {
	items := []Item{
		{Index: "a", Children: []Item{{Index: "a-1", Path: "/docs"}}},
		{Index: "b", Path: "/api", Children: []Item{{Index: "b-1", Path: "/api/v1"}}},
	}
	assert.Equal(t, "a-1", CurrentIndex("/docs/intro", items))
	assert.Equal(t, "b", CurrentIndex("/api/v1", items))
}

func TestWalk(t *testing.T) {
	var seen []string
	Walk(sample, func(it Item, depth int) bool {
		seen = append(seen, it.Index)
		return it.Index != "1-2"
	})
	assert.Equal(t, []string{"1", "1-1", "1-2"}, seen)
}

func TestCurrentIndexMatchesAnywhereInPath(t *testing.T) {
	assert.Equal(t, "2", CurrentIndex("/console/model/7", sample))
	assert.Equal(t, "", CurrentIndex("/console/models", sample))
}
