package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dihm/leveldiagram/pkg/diagram"
)

func testBrowserDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	d := diagram.New()
	steps := []error{
		d.AddLevel(diagram.Level{ID: "g", Energy: 0}),
		d.AddLevel(diagram.Level{ID: "e", Energy: 1, Group: "excited"}),
		d.AddLevel(diagram.Level{ID: "r", Energy: 2.5, Group: "rydberg"}),
		d.AddTransition(diagram.Transition{From: "g", To: "e"}),
		d.AddTransition(diagram.Transition{From: "e", To: "g", Style: diagram.StyleDecay}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("building diagram: %v", err)
		}
	}
	return d
}

func TestNewLevelListModelSortsByEnergy(t *testing.T) {
	m := NewLevelListModel(testBrowserDiagram(t))

	if len(m.Levels) != 3 {
		t.Fatalf("model has %d levels, want 3", len(m.Levels))
	}
	wantOrder := []string{"r", "e", "g"}
	for i, id := range wantOrder {
		if m.Levels[i].ID != id {
			t.Errorf("Levels[%d].ID = %q, want %q", i, m.Levels[i].ID, id)
		}
	}
}

func TestLevelListModelNavigation(t *testing.T) {
	m := NewLevelListModel(testBrowserDiagram(t))

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	next, _ := m.Update(down)
	m = next.(LevelListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after down = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(down)
	m = next.(LevelListModel)
	next, _ = m.Update(down) // already at the last level
	m = next.(LevelListModel)
	if m.Cursor != 2 {
		t.Errorf("cursor after overshoot = %d, want 2", m.Cursor)
	}

	next, _ = m.Update(up)
	m = next.(LevelListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after up = %d, want 1", m.Cursor)
	}
}

func TestLevelListModelSelect(t *testing.T) {
	m := NewLevelListModel(testBrowserDiagram(t))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(LevelListModel)

	if m.Selected == nil {
		t.Fatal("enter did not select a level")
	}
	if m.Selected.ID != "r" {
		t.Errorf("selected %q, want the highest level r", m.Selected.ID)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestLevelDisplayLabel(t *testing.T) {
	tests := []struct {
		name  string
		level diagram.Level
		want  string
	}{
		{"explicit label", diagram.Level{ID: "g", Label: "5S₁/₂"}, "5S₁/₂"},
		{"ket fallback", diagram.Level{ID: "g"}, "|g⟩"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := levelDisplayLabel(tt.level); got != tt.want {
				t.Errorf("levelDisplayLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransitionSummary(t *testing.T) {
	d := testBrowserDiagram(t)

	tests := []struct {
		id   string
		want string
	}{
		{"g", "1 out, 1 in"},
		{"e", "1 out, 1 in"},
		{"r", "—"},
	}

	for _, tt := range tests {
		if got := transitionSummary(d.Transitions(), tt.id); got != tt.want {
			t.Errorf("transitionSummary(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
