package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/easyapply/internal/model"
)

// errCancelled is returned by RunLoader when the user interrupts the load.
var errCancelled = errors.New("cancelled")

// Snapshot is what the dashboard shows: the stats header and the outcome rows.
type Snapshot struct {
	Stats model.DashboardStats
	Jobs  []model.JobRecord
}

// LoadFunc reads a Snapshot from the outcome store.
type LoadFunc func(ctx context.Context) (Snapshot, error)

type loadDoneMsg struct {
	snap Snapshot
	err  error
}

type loaderModel struct {
	label   string
	load    LoadFunc
	spinner spinner.Model
	result  Snapshot
	err     error
	done    bool
}

func newLoader(label string, load LoadFunc) loaderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{label: label, load: load, spinner: s}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doLoad(), m.spinner.Tick)
}

func (m loaderModel) doLoad() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		snap, err := load(ctx)
		return loadDoneMsg{snap: snap, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg:
		m.result = msg.snap
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = errCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Loading %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while load runs. It renders inline (no alt screen).
func RunLoader(label string, load LoadFunc) (Snapshot, error) {
	p := tea.NewProgram(newLoader(label, load))
	result, err := p.Run()
	if err != nil {
		return Snapshot{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
