// Package tui is the terminal dashboard over the outcome store.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/easyapply/internal/model"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

// Action is what the user asked for when leaving the dashboard.
type Action int

const (
	ActionQuit Action = iota
	ActionBack
	ActionReload
)

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	statsStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15"))

	statusColors = map[model.Status]lipgloss.Color{
		model.StatusApplied:    lipgloss.Color("42"),
		model.StatusSkipped:    lipgloss.Color("214"),
		model.StatusFailed:     lipgloss.Color("196"),
		model.StatusProcessing: lipgloss.Color("39"),
	}
)

type dashboardModel struct {
	snap     Snapshot
	filter   model.Status
	viewport viewport.Model
	detail   viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
	view     viewState
	action   Action
}

func newDashboard(snap Snapshot, filter model.Status) dashboardModel {
	return dashboardModel{snap: snap, filter: filter, action: ActionQuit}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m dashboardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.action = ActionQuit
		return m, tea.Quit
	case "esc", "b":
		m.action = ActionBack
		return m, tea.Quit
	case "r":
		m.action = ActionReload
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		if len(m.snap.Jobs) == 0 {
			return m, nil
		}
		m.view = viewDetail
		m.detail = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
		m.detail.SetContent(renderDetail(m.snap.Jobs[m.cursor]))
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.action = ActionQuit
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *dashboardModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.snap.Jobs)-1, 0))
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderJobs(m.snap.Jobs, m.cursor))

	top := m.cursor * jobItemHeight
	bottom := top + jobItemHeight - 1
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if bottom >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(bottom - m.viewport.Height + 1)
	}
}

func (m *dashboardModel) recalcLayout() {
	// Stats header (1) + border top/bottom (2) + status bar (1).
	width := max(m.width-2, 20)
	height := max(m.height-4, 5)

	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}
	m.viewport.SetContent(renderJobs(m.snap.Jobs, m.cursor))

	if m.view == viewDetail {
		m.detail.Width = max(m.width-4, 20)
		m.detail.Height = max(m.height-4, 5)
	}
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		title := detailTitleStyle.Render("Application")
		bar := statusBarStyle.Width(m.width).Render(" esc/backspace back  ↑/↓ scroll  q quit")
		return title + "\n" + borderStyle.Width(m.width-2).Render(m.detail.View()) + "\n" + bar
	}

	header := statsStyle.Render(renderStats(m.snap.Stats, m.filter, len(m.snap.Jobs)))
	list := borderStyle.Width(m.viewport.Width).Render(m.viewport.View())
	bar := statusBarStyle.Width(m.width).Render(" ↑/↓ cursor  enter detail  r reload  esc back  q quit")
	return header + "\n" + list + "\n" + bar
}

func renderStats(s model.DashboardStats, filter model.Status, shown int) string {
	scope := "all"
	if filter != "" {
		scope = string(filter)
	}
	return fmt.Sprintf("%s  applied %d total, %d today  skipped %d  failed %d  (showing %d %s)",
		s.Date, s.TotalApplied, s.AppliedToday, s.SkippedToday, s.FailedToday, shown, scope)
}

func renderJobs(jobs []model.JobRecord, cursor int) string {
	if len(jobs) == 0 {
		return "  (no applications yet)"
	}

	var b strings.Builder
	for i, j := range jobs {
		titleSt, subtitleSt, prefix := jobTitleStyle, jobSubtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedJobTitleStyle, selectedJobSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("%s: %s", j.Company, j.Title)))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(statusBadge(j.Status))
		b.WriteString(subtitleSt.Render(fmt.Sprintf(" %s · %s", j.Location, j.UpdatedAt.Local().Format("2006-01-02 15:04"))))
		b.WriteByte('\n')

		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func statusBadge(s model.Status) string {
	return lipgloss.NewStyle().Bold(true).Foreground(statusColors[s]).Render(strings.ToUpper(string(s)))
}

func renderDetail(j model.JobRecord) string {
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	field("Title", j.Title)
	field("Company", j.Company)
	field("Location", j.Location)
	field("Job ID", j.JobID)
	field("Status", statusBadge(j.Status))
	b.WriteByte('\n')
	field("First seen", j.AppliedAt.Local().Format("2006-01-02 15:04 MST"))
	field("Updated", j.UpdatedAt.Local().Format("2006-01-02 15:04 MST"))
	if j.Notes != "" {
		b.WriteByte('\n')
		field("Notes", j.Notes)
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunDashboard shows snap full-screen until the user leaves, and reports how.
func RunDashboard(snap Snapshot, filter model.Status) (Action, error) {
	p := tea.NewProgram(newDashboard(snap, filter), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return ActionQuit, err
	}
	return result.(dashboardModel).action, nil
}
