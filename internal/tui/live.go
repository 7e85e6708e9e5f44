// Package tui renders a live terminal view of a running trajectory.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/aimd/internal/engine"
)

const historyCapacity = 600

// StateMsg carries one committed state into the model.
type StateMsg struct{ State engine.State }

// DoneMsg reports that the engine returned.
type DoneMsg struct{ Err error }

// Sender is the part of *tea.Program the observer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards every committed state to a running program.
type Observer struct{ s Sender }

func NewObserver(s Sender) *Observer { return &Observer{s: s} }

func (o *Observer) OnStep(s engine.State) { o.s.Send(StateMsg{State: s.Clone()}) }

// Model is the bubbletea model of the live view.
type Model struct {
	title       string
	state       engine.State
	seen        bool
	total       []float64
	temperature []float64
	done        bool
	err         error
	width       int
	onQuit      func()
}

// NewModel builds the view. onQuit runs when the user quits, typically
// canceling the run context; it may be nil.
func NewModel(title string, onQuit func()) Model {
	return Model{
		title:       title,
		total:       make([]float64, 0, historyCapacity),
		temperature: make([]float64, 0, historyCapacity),
		width:       80,
		onQuit:      onQuit,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case StateMsg:
		m.state, m.seen = msg.State, true
		m.total = push(m.total, msg.State.TotalEnergy)
		m.temperature = push(m.temperature, msg.State.Temperature())
	case DoneMsg:
		m.done, m.err = true, msg.Err
	}
	return m, nil
}

func push(h []float64, v float64) []float64 {
	if len(h) == historyCapacity {
		copy(h, h[1:])
		h = h[:len(h)-1]
	}
	return append(h, v)
}

// Steps returns how many states the model has received, bounded by its
// history capacity.
func (m Model) Steps() int { return len(m.total) }

func (m Model) Err() error { return m.err }

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED: " + m.err.Error())
	case m.done:
		return StatusDone.Render("DONE")
	case !m.seen:
		return StatusRunning.Render("BOOTSTRAPPING")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if m.seen {
		st := m.state
		frac := 0.0
		if st.NumSteps > 0 {
			frac = float64(st.StepNum) / float64(st.NumSteps)
		}
		s.WriteString(ProgressBar(frac, 30) + Subtle.Render(fmt.Sprintf(" %d/%d", st.StepNum, st.NumSteps)) + "\n\n")
		s.WriteString(Row("Time", fmt.Sprintf("%.2f fs", st.Time())) + "\n")
		s.WriteString(Row("Potential", fmt.Sprintf("%.6f", st.PotentialEnergy)) + "\n")
		s.WriteString(Row("Kinetic", fmt.Sprintf("%.6f", st.KineticEnergy)) + "\n")
		s.WriteString(Row("Total", fmt.Sprintf("%.6f", st.TotalEnergy)) + "\n")
		s.WriteString(Row("Temperature", fmt.Sprintf("%.1f K", st.Temperature())) + "\n")
		s.WriteString(Subtle.Render("energies in 100 kJ/mol") + "\n")
	}

	width := m.width - 20
	if width < 20 {
		width = 20
	}
	var graphs []string
	if len(m.total) > 1 {
		graphs = append(graphs, Graph.Render(asciigraph.Plot(m.total,
			asciigraph.Height(6), asciigraph.Width(width/2), asciigraph.Caption("total energy"))))
	}
	if len(m.temperature) > 1 {
		graphs = append(graphs, Graph.Render(asciigraph.Plot(m.temperature,
			asciigraph.Height(6), asciigraph.Width(width/2), asciigraph.Caption("temperature (K)"))))
	}
	if len(graphs) > 0 {
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, graphs...) + "\n")
	}

	s.WriteString(KeyHint.Render("q: stop the run"))
	return Panel.Render(s.String())
}
