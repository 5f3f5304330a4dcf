package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gridstate/pkg/comp"
	"github.com/san-kum/gridstate/pkg/darray"
	"github.com/san-kum/gridstate/pkg/marshal"
	"github.com/san-kum/gridstate/pkg/schema"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model steps a tendency component forward with explicit Euler and
// plots the watched quantity's profile mean as it evolves.
type Model struct {
	component comp.TendencyComponent
	state     *darray.State
	initial   *darray.State
	watch     string
	dt        time.Duration
	step      int
	steps     int
	running   bool
	err       error
	history   []float64
	snapshots []*darray.RawState
}

// NewModel prepares a live run watching one state quantity.
func NewModel(c comp.TendencyComponent, state *darray.State, watch string, dt time.Duration, steps int) Model {
	return Model{
		component: c,
		state:     state,
		initial:   state.Copy(),
		watch:     watch,
		dt:        dt,
		steps:     steps,
		running:   true,
		history:   make([]float64, 0, historyCapacity),
		snapshots: make([]*darray.RawState, 0, steps),
	}
}

// Snapshots returns the raw state captured after every completed step.
func (m Model) Snapshots() []*darray.RawState { return m.snapshots }

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.state = m.initial.Copy()
			m.step = 0
			m.history = m.history[:0]
			m.snapshots = m.snapshots[:0]
			m.err = nil
			m.running = true
		}
	case TickMsg:
		if m.running && m.err == nil && m.step < m.steps {
			m.advance()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) advance() {
	tendencies, _, err := comp.CallTendency(m.component, m.state)
	if err != nil {
		m.err = err
		return
	}
	for name, tend := range tendencies {
		q, ok := m.state.Fields[name]
		if !ok {
			continue
		}
		units, _ := q.Units()
		// tendency is in units-per-second, so the increment over dt is
		// already in the quantity's own units
		incr := darray.Scale(tend, m.dt.Seconds())
		incr.Attrs = map[string]string{"units": units}
		next, err := darray.Add(q, incr)
		if err != nil {
			m.err = err
			return
		}
		m.state.Fields[name] = next
	}
	m.state.Time = m.state.Time.Add(m.dt)
	m.step++

	q, ok := m.state.Fields[m.watch]
	if !ok {
		return
	}
	m.history = append(m.history, mean(q.Values.Elements))
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	units, _ := q.Units()
	snap, err := marshal.GetRawArrays(m.state, schema.Schema{
		m.watch: {Dims: []string{"*"}, Units: units},
	})
	if err != nil {
		m.err = err
		return
	}
	m.snapshots = append(m.snapshots, snap)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("gridstate demo: %s", m.component.Name())))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("r reset · q quit"))
		return b.String()
	}

	graph := "collecting..."
	if len(m.history) >= 2 {
		graph = asciigraph.Plot(m.history,
			asciigraph.Height(12),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("mean %s", m.watch)))
	}

	stats := lipgloss.JoinVertical(lipgloss.Left,
		statRow("step", fmt.Sprintf("%d / %d", m.step, m.steps)),
		statRow("model time", m.state.Time.UTC().Format("15:04:05")),
		statRow("dt", m.dt.String()),
		statRow("mean", lastValue(m.history)),
		statRow("running", fmt.Sprintf("%v", m.running)),
	)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		graphStyle.Render(graph),
		statsStyle.Render(stats)))
	b.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	return b.String()
}

// Run drives the live view until completion or until the user quits,
// returning the final model for snapshot access.
func Run(m Model) (Model, error) {
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return m, err
	}
	out, ok := final.(Model)
	if !ok {
		return m, fmt.Errorf("unexpected model type %T", final)
	}
	return out, nil
}

func statRow(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func lastValue(history []float64) string {
	if len(history) == 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", history[len(history)-1])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
