package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/easyapply/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

// StatusChoices are the picker entries. The empty status means all outcomes.
var StatusChoices = []model.Status{
	"",
	model.StatusApplied,
	model.StatusSkipped,
	model.StatusFailed,
	model.StatusProcessing,
}

const (
	pickerPending = -1
	pickerQuit    = -2
)

type pickerModel struct {
	choices []model.Status
	cursor  int
	chosen  int
}

func newPicker() pickerModel {
	return pickerModel{choices: StatusChoices, chosen: pickerPending}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.chosen = pickerQuit
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Application History: select outcomes")
	s += "\n"

	for i, c := range m.choices {
		label := statusLabel(c)
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+label) + "\n"
		} else {
			s += pickerItemStyle.Render(label) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

func statusLabel(s model.Status) string {
	if s == "" {
		return "All outcomes"
	}
	return fmt.Sprintf("Only %s", s)
}

// RunStatusPicker asks which outcomes to list. ok is false when the user quit.
func RunStatusPicker() (status model.Status, ok bool, err error) {
	p := tea.NewProgram(newPicker())
	result, err := p.Run()
	if err != nil {
		return "", false, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return "", false, nil
	}
	return final.choices[final.chosen], true, nil
}
