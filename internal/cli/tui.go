package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/buildingmap/pkg/building"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// LevelListModel - Interactive level selection
// =============================================================================

// levelItem is one selectable row.
type levelItem struct {
	Name      string
	Elevation float64
	Counts    building.Counts
}

// LevelListModel is the bubbletea model for picking a level to draw.
type LevelListModel struct {
	Levels   []levelItem
	Cursor   int
	Selected string
}

// NewLevelListModel lists the levels of m in persisted order.
func NewLevelListModel(m *building.Map) LevelListModel {
	var items []levelItem
	for _, name := range m.LevelNames() {
		l := m.Levels[name]
		items = append(items, levelItem{Name: name, Elevation: l.Elevation, Counts: l.Counts()})
	}
	return LevelListModel{Levels: items}
}

func (m LevelListModel) Init() tea.Cmd {
	return nil
}

func (m LevelListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Levels)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Levels) > 0 {
				m.Selected = m.Levels[m.Cursor].Name
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m LevelListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Level"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, l := range m.Levels {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-12s %s", cursor, l.Name,
			listDimStyle.Render(fmt.Sprintf("z=%g  %d vertices  %d lanes  %d walls",
				l.Elevation, l.Counts.Vertices, l.Counts.Lanes, l.Counts.Walls)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pickLevel runs the picker and returns the chosen level name, or "" when
// the user quit.
func pickLevel(m *building.Map) (string, error) {
	final, err := tea.NewProgram(NewLevelListModel(m)).Run()
	if err != nil {
		return "", err
	}
	return final.(LevelListModel).Selected, nil
}
