package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/easyapply/internal/model"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleSnapshot() Snapshot {
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	return Snapshot{
		Stats: model.DashboardStats{TotalApplied: 4, AppliedToday: 2, FailedToday: 1, SkippedToday: 3, Date: "2026-03-02"},
		Jobs: []model.JobRecord{
			{ID: 1, JobID: "11", Title: "Backend Engineer", Company: "Acme", Location: "Remote", Status: model.StatusApplied, AppliedAt: at, UpdatedAt: at, Notes: "Submitted"},
			{ID: 2, JobID: "12", Title: "SRE", Company: "Beta", Location: "NYC", Status: model.StatusFailed, AppliedAt: at, UpdatedAt: at},
		},
	}
}

func TestPicker_SelectsStatus(t *testing.T) {
	var m tea.Model = newPicker()
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))

	p := m.(pickerModel)
	if cmd == nil {
		t.Fatal("enter should quit the picker")
	}
	if got := p.choices[p.chosen]; got != model.StatusSkipped {
		t.Errorf("chosen = %q, want skipped", got)
	}
}

func TestPicker_CursorClamped(t *testing.T) {
	var m tea.Model = newPicker()
	m, _ = m.Update(key("up"))
	for i := 0; i < 10; i++ {
		m, _ = m.Update(key("j"))
	}
	if c := m.(pickerModel).cursor; c != len(StatusChoices)-1 {
		t.Errorf("cursor = %d, want %d", c, len(StatusChoices)-1)
	}
}

func TestPicker_Quit(t *testing.T) {
	var m tea.Model = newPicker()
	m, _ = m.Update(key("q"))
	if m.(pickerModel).chosen != pickerQuit {
		t.Error("q should mark the picker as quit")
	}
}

func TestPicker_ViewListsChoices(t *testing.T) {
	v := newPicker().View()
	for _, want := range []string{"All outcomes", "Only applied", "Only failed"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLoader_StoresResult(t *testing.T) {
	m := newLoader("history", func(context.Context) (Snapshot, error) { return sampleSnapshot(), nil })

	msg := m.doLoad()()
	next, cmd := m.Update(msg)
	l := next.(loaderModel)

	if cmd == nil || !l.done {
		t.Fatal("loader should finish on load result")
	}
	if len(l.result.Jobs) != 2 || l.err != nil {
		t.Errorf("result = %+v, err = %v", l.result, l.err)
	}
	if l.View() != "" {
		t.Error("finished loader should render nothing")
	}
}

func TestLoader_CtrlCCancels(t *testing.T) {
	m := newLoader("history", func(context.Context) (Snapshot, error) { return Snapshot{}, nil })
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if l := next.(loaderModel); !errors.Is(l.err, errCancelled) {
		t.Errorf("err = %v, want cancelled", l.err)
	}
}

func TestDashboard_Actions(t *testing.T) {
	cases := []struct {
		key  string
		want Action
	}{
		{"q", ActionQuit},
		{"esc", ActionBack},
		{"r", ActionReload},
	}
	for _, tc := range cases {
		var m tea.Model = newDashboard(sampleSnapshot(), "")
		m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
		m, cmd := m.Update(key(tc.key))
		if cmd == nil {
			t.Errorf("%s: expected quit command", tc.key)
		}
		if got := m.(dashboardModel).action; got != tc.want {
			t.Errorf("%s: action = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestDashboard_RendersStatsAndJobs(t *testing.T) {
	var m tea.Model = newDashboard(sampleSnapshot(), model.StatusApplied)
	if m.View() != "Initializing..." {
		t.Error("view before sizing should be a placeholder")
	}
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	v := m.View()
	for _, want := range []string{"2026-03-02", "applied 4 total, 2 today", "Acme: Backend Engineer", "Beta: SRE", "APPLIED", "FAILED", "showing 2 applied"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboard_DetailView(t *testing.T) {
	var m tea.Model = newDashboard(sampleSnapshot(), "")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = m.Update(key("enter"))

	d := m.(dashboardModel)
	if d.view != viewDetail {
		t.Fatal("enter should open the detail view")
	}
	if v := d.View(); !strings.Contains(v, "Submitted") || !strings.Contains(v, "Backend Engineer") {
		t.Errorf("detail view missing fields: %s", v)
	}

	m, _ = m.Update(key("esc"))
	if m.(dashboardModel).view != viewList {
		t.Error("esc should return to the list")
	}
}

func TestDashboard_EmptyListEnterIsNoop(t *testing.T) {
	var m tea.Model = newDashboard(Snapshot{}, "")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m, _ = m.Update(key("enter"))
	if m.(dashboardModel).view != viewList {
		t.Error("enter on empty list should stay on the list")
	}
	if !strings.Contains(m.View(), "no applications yet") {
		t.Error("empty list placeholder missing")
	}
}

func TestDashboard_CursorMoves(t *testing.T) {
	var m tea.Model = newDashboard(sampleSnapshot(), "")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	if c := m.(dashboardModel).cursor; c != 1 {
		t.Errorf("cursor = %d, want 1", c)
	}
}
