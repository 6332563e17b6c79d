package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// levelsCommand creates the levels command, an interactive browser for
// the levels and transitions of a diagram file.
func (c *CLI) levelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels [diagram.json|diagram.toml]",
		Short: "Browse a diagram's levels interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{}
			d, err := loadDiagram(args[0], &opts)
			if err != nil {
				return err
			}

			model := NewLevelListModel(d)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return fmt.Errorf("run level browser: %w", err)
			}

			if m, ok := final.(LevelListModel); ok && m.Selected != nil {
				printLevelDetail(d, m.Selected)
			}
			return nil
		},
	}
}

// printLevelDetail prints a summary of the selected level after the TUI exits.
func printLevelDetail(d *diagram.Diagram, l *diagram.Level) {
	printNewline()
	printKeyValue("Level", levelDisplayLabel(*l))
	printKeyValue("Energy", fmt.Sprintf("%g", l.Energy))
	if l.Group != "" {
		printKeyValue("Group", l.Group)
	}
	for _, t := range d.Transitions() {
		if t.From != l.ID && t.To != l.ID {
			continue
		}
		printDetail("%s %s %s (%s)", diagram.Ket(t.From), iconArrow, diagram.Ket(t.To), t.Style)
	}
}

// =============================================================================
// LevelListModel - Interactive level browsing
// =============================================================================

// LevelListModel is the bubbletea model for browsing diagram levels.
// Levels are listed from the highest energy down, matching how the
// diagram is drawn.
type LevelListModel struct {
	Levels      []*diagram.Level
	Transitions []diagram.Transition
	Cursor      int
	Selected    *diagram.Level
	Height      int
	Offset      int
}

// NewLevelListModel creates a new level list model from a diagram.
func NewLevelListModel(d *diagram.Diagram) LevelListModel {
	levels := d.Levels()
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Energy > levels[j].Energy
	})
	return LevelListModel{
		Levels:      levels,
		Transitions: d.Transitions(),
		Cursor:      0,
		Height:      15,
		Offset:      0,
	}
}

func (m LevelListModel) Init() tea.Cmd {
	return nil
}

func (m LevelListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Levels)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Levels[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LevelListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Levels"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ inspect  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Levels) {
		end = len(m.Levels)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		l := m.Levels[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		group := l.Group
		if group == "" {
			group = "—"
		}

		rows = append(rows, []string{
			cursor,
			levelDisplayLabel(*l),
			fmt.Sprintf("%g", l.Energy),
			group,
			transitionSummary(m.Transitions, l.ID),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Level", "Energy", "Group", "Transitions").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Levels))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// levelDisplayLabel returns the level's label, falling back to Dirac
// ket notation of its id.
func levelDisplayLabel(l diagram.Level) string {
	if l.Label != "" {
		return l.Label
	}
	return diagram.Ket(l.ID)
}

// transitionSummary describes the transitions touching a level, e.g.
// "2 out, 1 in".
func transitionSummary(ts []diagram.Transition, id string) string {
	var out, in int
	for _, t := range ts {
		if t.From == id {
			out++
		}
		if t.To == id && t.From != id {
			in++
		}
	}
	if out == 0 && in == 0 {
		return "—"
	}
	var parts []string
	if out > 0 {
		parts = append(parts, fmt.Sprintf("%d out", out))
	}
	if in > 0 {
		parts = append(parts, fmt.Sprintf("%d in", in))
	}
	return strings.Join(parts, ", ")
}
