package diagram

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func sampleDiagram(t *testing.T) *Diagram {
	t.Helper()
	d := New()
	x := 2.5
	adds := []error{
		d.AddLevel(Level{ID: "g", Energy: 0, Group: "ground", Width: 1.5}),
		d.AddLevel(Level{ID: "e", Energy: 1, Group: "excited", Label: "|e⟩"}),
		d.AddLevel(Level{ID: "r", Energy: 2.2, XOffset: &x}),
		d.AddTransition(Transition{From: "g", To: "e", Label: "Ω", Detuning: 0.1}),
		d.AddTransition(Transition{From: "e", To: "g", Style: StyleDecay, WaveAmp: 0.2}),
		d.AddTransition(Transition{From: "e", To: "r", Style: StyleTwoWay, Anchor: AnchorRight}),
	}
	for _, err := range adds {
		if err != nil {
			t.Fatalf("building sample diagram: %v", err)
		}
	}
	return d
}

func TestJSONRoundTrip(t *testing.T) {
	d := sampleDiagram(t)

	data, err := Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.LevelCount() != d.LevelCount() {
		t.Errorf("LevelCount = %d, want %d", got.LevelCount(), d.LevelCount())
	}
	if got.TransitionCount() != d.TransitionCount() {
		t.Errorf("TransitionCount = %d, want %d", got.TransitionCount(), d.TransitionCount())
	}

	// Insertion order is part of the contract.
	for i, l := range d.Levels() {
		if got.Levels()[i].ID != l.ID {
			t.Errorf("level order[%d] = %q, want %q", i, got.Levels()[i].ID, l.ID)
		}
	}

	r, ok := got.Level("r")
	if !ok {
		t.Fatal("level r missing after round trip")
	}
	if r.XOffset == nil || *r.XOffset != 2.5 {
		t.Errorf("XOffset = %v, want 2.5", r.XOffset)
	}

	tr := got.Transitions()[1]
	if tr.Style != StyleDecay || tr.WaveAmp != 0.2 {
		t.Errorf("decay transition lost attributes: %+v", tr)
	}
}

func TestFileRoundTrip(t *testing.T) {
	d := sampleDiagram(t)
	path := filepath.Join(t.TempDir(), "diagram.json")

	if err := WriteFile(d, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got.LevelCount() != 3 || got.TransitionCount() != 3 {
		t.Errorf("got %d levels, %d transitions", got.LevelCount(), got.TransitionCount())
	}
}

func TestToDiagramDanglingReference(t *testing.T) {
	doc := Document{
		Levels:      []LevelDoc{{ID: "g"}},
		Transitions: []TransitionDoc{{From: "g", To: "missing"}},
	}
	_, err := ToDiagram(doc)
	if !errors.Is(err, ErrUnknownTargetLevel) {
		t.Fatalf("ToDiagram() error = %v, want ErrUnknownTargetLevel", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error should name the offending reference: %v", err)
	}
}

func TestToDiagramInvalidAnchor(t *testing.T) {
	doc := Document{
		Levels:      []LevelDoc{{ID: "a"}, {ID: "b", Energy: 1}},
		Transitions: []TransitionDoc{{From: "a", To: "b", Anchor: "middle-ish"}},
	}
	if _, err := ToDiagram(doc); err == nil {
		t.Fatal("ToDiagram() expected error for invalid anchor")
	}
}

func TestDecodeTOML(t *testing.T) {
	src := `
[layout]
scale = "log"
label_side = "right"
collision_threshold = 0.2

[[level]]
id = "g"
energy = 0.0
group = "ground"

[[level]]
id = "e"
energy = 1.0
group = "excited"
width = 2.0

[[transition]]
from = "g"
to = "e"
label = "probe"

[[transition]]
from = "e"
to = "g"
style = "decay"
`
	d, hints, err := DecodeTOML([]byte(src))
	if err != nil {
		t.Fatalf("DecodeTOML() error = %v", err)
	}
	if d.LevelCount() != 2 || d.TransitionCount() != 2 {
		t.Fatalf("got %d levels, %d transitions", d.LevelCount(), d.TransitionCount())
	}
	if hints.Scale != "log" || hints.LabelSide != "right" || hints.CollisionThreshold != 0.2 {
		t.Errorf("hints = %+v", hints)
	}
	e, _ := d.Level("e")
	if e.Width != 2.0 {
		t.Errorf("width = %v, want 2", e.Width)
	}
	if d.Transitions()[1].Style != StyleDecay {
		t.Errorf("style = %q, want decay", d.Transitions()[1].Style)
	}
}

func TestDecodeTOMLRejectsDangling(t *testing.T) {
	src := `
[[level]]
id = "g"

[[transition]]
from = "g"
to = "gone"
`
	if _, _, err := DecodeTOML([]byte(src)); !errors.Is(err, ErrUnknownTargetLevel) {
		t.Fatalf("DecodeTOML() error = %v, want ErrUnknownTargetLevel", err)
	}
}
