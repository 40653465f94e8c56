package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kgview/pkg/graph"
)

func browserGraph() *graph.RenderGraph {
	return graph.Transform(&graph.Payload{
		Nodes: []graph.Record{
			{"entity_name": "Ada", "entity_type": "person", "pagerank": 0.4},
			{"entity_name": "Engine", "entity_type": "machine"},
			{"entity_name": "Babbage", "entity_type": "person"},
		},
		Edges: []graph.Record{
			{"source_entity": "Ada", "target_entity": "Engine"},
			{"source_entity": "Babbage", "target_entity": "Engine"},
		},
	}, graph.Options{})
}

func TestNodeBrowserOrdersByDegree(t *testing.T) {
	m := NewNodeBrowserModel(browserGraph(), nil)
	assert.Equal(t, []string{"Engine", "Ada", "Babbage"}, m.VisibleIDs())
}

func TestNodeBrowserTypingRequestsFilter(t *testing.T) {
	var requested []string
	m := NewNodeBrowserModel(browserGraph(), func(q string) { requested = append(requested, q) })

	for _, r := range "per" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(NodeBrowserModel)
	}
	assert.Equal(t, []string{"p", "pe", "per"}, requested)
	assert.Len(t, m.VisibleIDs(), 3, "filter applies only once the debounced message arrives")

	next, _ := m.Update(filterMsg{query: "per"})
	m = next.(NodeBrowserModel)
	assert.Equal(t, "per", m.Query())
	assert.Equal(t, []string{"Ada", "Babbage"}, m.VisibleIDs())
}

func TestNodeBrowserNavigationAndSelect(t *testing.T) {
	m := NewNodeBrowserModel(browserGraph(), nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(NodeBrowserModel)
	assert.Equal(t, 1, m.Cursor)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(NodeBrowserModel)
	require.NotNil(t, m.Selected)
	assert.Equal(t, "Ada", m.Selected.ID)
	assert.NotNil(t, cmd)
}

func TestNodeBrowserEmptyFilterResult(t *testing.T) {
	m := NewNodeBrowserModel(browserGraph(), nil)
	next, _ := m.Update(filterMsg{query: "zzz"})
	m = next.(NodeBrowserModel)
	assert.Empty(t, m.VisibleIDs())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, next.(NodeBrowserModel).Selected)
	assert.True(t, strings.Contains(m.View(), "[0/0 of 3]"))
}

func TestNodeBrowserView(t *testing.T) {
	m := NewNodeBrowserModel(browserGraph(), nil)
	view := m.View()
	assert.Contains(t, view, "Knowledge Graph Nodes")
	assert.Contains(t, view, "Engine")
	assert.Contains(t, view, "0.40000")
}
