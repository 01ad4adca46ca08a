// Command graphview-demo animates a force-directed layout of a small
// demo graph in the terminal. The simulation runs through its own frame
// driver; every frame pushes a repaint message into the UI loop.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/graph"
	"github.com/dd0wney/cluso-graphview/pkg/layout"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/viz"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	canvasStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 1).
			MarginLeft(2)

	statsStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2).
			MarginLeft(2)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Restart    key.Binding
	Precompute key.Binding
	AddNode    key.Binding
	Export     key.Binding
	Stop       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	Precompute: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "precompute"),
	),
	AddNode: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add node"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export svg"),
	),
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Restart, k.Precompute, k.AddNode, k.Export, k.Stop, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// frameMsg is sent by the layout's render callback after every frame.
type frameMsg struct{}

// endedMsg is sent once when a cycle converges.
type endedMsg struct{}

type model struct {
	state      *graph.State
	controller *layout.Controller
	notifyEnd  func()
	keys       keyMap
	help       help.Model
	width      int
	height     int
	message    string
	startTime  time.Time
}

func initialModel(state *graph.State, controller *layout.Controller, notifyEnd func()) model {
	return model{
		state:      state,
		controller: controller,
		notifyEnd:  notifyEnd,
		keys:       keys,
		help:       help.New(),
		startTime:  time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case frameMsg:
		// Positions changed; View picks up the new snapshot.

	case endedMsg:
		m.message = "layout converged"

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.controller.Close()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Restart):
			m.message = "animating"
			// The end callback is one-shot; re-arm it for this cycle.
			m.controller.OnEnd(m.notifyEnd)
			m.controller.Restart()

		case key.Matches(msg, m.keys.Precompute):
			m.controller.Precompute()
			m.message = "precomputed a settled layout"

		case key.Matches(msg, m.keys.AddNode):
			m.message = m.addNode()

		case key.Matches(msg, m.keys.Export):
			m.message = m.exportSVG()

		case key.Matches(msg, m.keys.Stop):
			m.controller.Stop()
			m.message = "stopped"
		}
	}

	return m, nil
}

// addNode grows the graph at runtime and re-settles the layout: the
// engine takes a full working-set replacement mid-animation.
func (m model) addNode() string {
	id := uint64(m.state.NodeCount() + 1)
	if err := m.state.AddNode(&graph.Node{
		ID:         id,
		Labels:     []string{"Person"},
		Properties: map[string]string{"name": fmt.Sprintf("guest-%d", id)},
	}); err != nil {
		return fmt.Sprintf("add node failed: %v", err)
	}
	// Attach the newcomer to the previous node so it doesn't float free.
	m.state.AddRelationship(&graph.Relationship{
		ID:         100 + id,
		FromNodeID: id - 1,
		ToNodeID:   id,
		Type:       "KNOWS",
	})

	m.controller.UpdateNodes(m.state)
	m.controller.UpdateRelationships(m.state)
	m.controller.OnEnd(m.notifyEnd)
	m.controller.Restart()
	return fmt.Sprintf("added node %d", id)
}

func (m model) exportSVG() string {
	snap := viz.Capture(m.controller, m.state)
	path := fmt.Sprintf("layout-%d.svg", time.Now().Unix())
	if err := os.WriteFile(path, snap.ExportSVG(viz.DefaultSVGConfig()), 0644); err != nil {
		return fmt.Sprintf("export failed: %v", err)
	}
	return "exported " + path
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("Cluso GraphView - Force Layout Demo"))
	s.WriteString("\n\n")

	snap := viz.Capture(m.controller, m.state)
	s.WriteString(canvasStyle.Render(renderCanvas(snap, 72, 24)))
	s.WriteString("\n")

	sim := m.controller.Simulation()
	stats := fmt.Sprintf("phase: %-12s  alpha: %.4f  nodes: %d  relationships: %d  uptime: %s",
		m.controller.Phase(), sim.Alpha(),
		m.state.NodeCount(), m.state.RelationshipCount(),
		time.Since(m.startTime).Round(time.Second))
	s.WriteString(statsStyle.Render(stats))

	if m.message != "" {
		s.WriteString("\n")
		s.WriteString(messageStyle.Render(m.message))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	s.WriteString("\n")
	return s.String()
}

// renderCanvas draws the positioned graph on a character grid:
// relationship lines first, node glyphs on top.
func renderCanvas(snap viz.Snapshot, width, height int) string {
	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = make([]rune, width)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	cols := make(map[uint64]int, len(snap.Nodes))
	rows := make(map[uint64]int, len(snap.Nodes))
	cfg := viz.SVGConfig{Width: float64(width - 1), Height: float64(height - 1), Padding: 1}
	toCol, toRow := viz.FitTransform(snap, cfg)
	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		cols[n.ID] = int(toCol(n.X) + 0.5)
		rows[n.ID] = int(toRow(n.Y) + 0.5)
	}

	for _, r := range snap.Relationships {
		x0, okF := cols[r.FromNodeID]
		x1, okT := cols[r.ToNodeID]
		if !okF || !okT {
			continue
		}
		drawLine(grid, x0, rows[r.FromNodeID], x1, rows[r.ToNodeID])
	}

	for i := range snap.Nodes {
		n := &snap.Nodes[i]
		glyph := 'o'
		if len(n.Labels) > 0 && n.Labels[0] != "" {
			glyph = rune(n.Labels[0][0])
		}
		grid[rows[n.ID]][cols[n.ID]] = glyph
	}

	lines := make([]string, height)
	for y := range grid {
		lines[y] = string(grid[y])
	}
	return strings.Join(lines, "\n")
}

// drawLine plots a dotted segment between two grid cells.
func drawLine(grid [][]rune, x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := sign(x1 - x0)
	sy := sign(y1 - y0)
	err := dx + dy
	x, y := x0, y0
	for {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && grid[y][x] == ' ' {
			grid[y][x] = '.'
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// demoGraph builds a small social network, including a reciprocal
// relationship that the layout collapses into a single link.
func demoGraph() *graph.State {
	st := graph.NewState()
	people := []string{"ada", "grace", "alan", "edsger", "barbara", "tony"}
	for i, name := range people {
		st.AddNode(&graph.Node{
			ID:         uint64(i + 1),
			Labels:     []string{"Person"},
			Properties: map[string]string{"name": name},
		})
	}
	st.AddNode(&graph.Node{ID: 7, Labels: []string{"City"}, Properties: map[string]string{"name": "london"}})
	st.AddNode(&graph.Node{ID: 8, Labels: []string{"City"}, Properties: map[string]string{"name": "zurich"}})

	rels := []struct {
		id, from, to uint64
		typ          string
	}{
		{10, 1, 2, "KNOWS"},
		{11, 2, 1, "KNOWS"},
		{12, 2, 3, "KNOWS"},
		{13, 3, 4, "KNOWS"},
		{14, 4, 5, "KNOWS"},
		{15, 5, 6, "KNOWS"},
		{16, 6, 1, "KNOWS"},
		{17, 1, 7, "LIVES_IN"},
		{18, 3, 7, "LIVES_IN"},
		{19, 4, 8, "LIVES_IN"},
		{20, 5, 8, "LIVES_IN"},
	}
	for _, r := range rels {
		st.AddRelationship(&graph.Relationship{ID: r.id, FromNodeID: r.from, ToNodeID: r.to, Type: r.typ})
	}
	return st
}

func main() {
	cfg := config.Default()
	if len(os.Args) > 1 {
		loaded, err := config.Load(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	logger := logging.NewDefaultLogger()
	state := demoGraph()

	var program *tea.Program
	controller := layout.NewController(cfg,
		layout.WithLogger(logger.With(logging.Component("demo"))),
		layout.WithRender(func() {
			if program != nil {
				program.Send(frameMsg{})
			}
		}),
	)
	notifyEnd := func() {
		if program != nil {
			program.Send(endedMsg{})
		}
	}

	controller.UpdateNodes(state)
	controller.UpdateRelationships(state)
	controller.Precompute()

	program = tea.NewProgram(initialModel(state, controller, notifyEnd), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
