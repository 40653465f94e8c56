package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kgview/pkg/format"
	"github.com/matzehuels/kgview/pkg/graph"
	"github.com/matzehuels/kgview/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// NodeBrowserModel - Interactive node list with a debounced filter
// =============================================================================

// filterMsg applies a filter query once typing has settled.
type filterMsg struct{ query string }

// nodeRow is one node of the browser with its precomputed degree.
type nodeRow struct {
	node   graph.RenderNode
	degree int
}

// NodeBrowserModel is the bubbletea model behind `kgview browse`.
type NodeBrowserModel struct {
	rows    []nodeRow
	visible []int
	input   textinput.Model
	query   string

	Cursor   int
	Offset   int
	Height   int
	Selected *graph.RenderNode

	// requestFilter is called on every keystroke in the filter box. The
	// browse command debounces it and feeds filterMsg back to the program.
	requestFilter func(query string)
}

// NewNodeBrowserModel lists the nodes of g by descending degree.
func NewNodeBrowserModel(g *graph.RenderGraph, requestFilter func(string)) NodeBrowserModel {
	degree := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		degree[e.Source]++
		degree[e.Target]++
	}
	rows := make([]nodeRow, len(g.Nodes))
	for i, n := range g.Nodes {
		rows[i] = nodeRow{node: n, degree: degree[n.ID]}
	}
	slices.SortStableFunc(rows, func(a, b nodeRow) int { return b.degree - a.degree })

	in := textinput.New()
	in.Placeholder = "filter by name or type"
	in.Prompt = "/ "
	in.Focus()

	m := NodeBrowserModel{
		rows:          rows,
		input:         in,
		Height:        15,
		requestFilter: requestFilter,
	}
	m.applyFilter("")
	return m
}

func (m NodeBrowserModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m NodeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case filterMsg:
		m.applyFilter(msg.query)
		return m, nil
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
			return m, nil
		case "down", "ctrl+j":
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
			return m, nil
		case "enter":
			if len(m.visible) == 0 {
				return m, nil
			}
			n := m.rows[m.visible[m.Cursor]].node
			m.Selected = &n
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before && m.requestFilter != nil {
		m.requestFilter(v)
	}
	return m, cmd
}

// applyFilter keeps nodes whose name, label or entity type contains query,
// ignoring case.
func (m *NodeBrowserModel) applyFilter(query string) {
	m.query = query
	q := strings.ToLower(strings.TrimSpace(query))
	m.visible = make([]int, 0, len(m.rows))
	for i, r := range m.rows {
		if q == "" ||
			strings.Contains(strings.ToLower(r.node.ID), q) ||
			strings.Contains(strings.ToLower(r.node.Label), q) ||
			strings.Contains(strings.ToLower(r.node.Extra.Text(graph.KeyEntityType)), q) {
			m.visible = append(m.visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m NodeBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Knowledge Graph Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ details  esc quit"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.rows[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			r.node.ID,
			r.node.Extra.Text(graph.KeyEntityType),
			fmt.Sprintf("%.1f", r.node.Size),
			fmt.Sprint(r.degree),
			format.Score(pagerank(r.node)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Type", "Size", "Degree", "PageRank").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			n := m.rows[m.visible[idx]].node
			base := lipgloss.NewStyle()
			if col == 2 {
				base = base.Foreground(lipgloss.Color(render.HexColor(n.Style.Fill)))
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d of %d]", min(m.Cursor+1, len(m.visible)), len(m.visible), len(m.rows))))
	return b.String()
}

// Query returns the filter currently applied to the list.
func (m NodeBrowserModel) Query() string { return m.query }

// VisibleIDs returns the ids of the nodes passing the filter, in list order.
func (m NodeBrowserModel) VisibleIDs() []string {
	ids := make([]string, len(m.visible))
	for i, idx := range m.visible {
		ids[i] = m.rows[idx].node.ID
	}
	return ids
}

// pagerank returns the node's pagerank or nil so Score prints its sentinel.
func pagerank(n graph.RenderNode) any {
	if v, ok := n.Extra.Number(graph.KeyPageRank); ok {
		return v
	}
	return nil
}

// printNode prints the attributes of a node picked in the browser.
func printNode(n *graph.RenderNode) {
	fmt.Fprintln(os.Stderr, listSelectedStyle.Render(n.ID))
	printKeyValue("Type", n.Extra.Text(graph.KeyEntityType))
	printKeyValue("Size", fmt.Sprintf("%.2f", n.Size))
	printKeyValue("Colour", n.Style.Fill)
	if d := n.Extra.Text(graph.KeyDescription); d != "" {
		printKeyValue("Description", d)
	}
}
