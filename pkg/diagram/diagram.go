// Package diagram defines the graph model for energy level diagrams.
//
// Levels are the nodes (discrete energy states drawn as horizontal segments)
// and transitions are the edges (optical couplings, decays) between them.
// The model is the only durable state the layout engine reads; every layout
// pass produces fresh geometry from a snapshot of it.
package diagram

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrInvalidLevelID is returned by [Diagram.AddLevel] when the level ID
	// is empty. All levels must have non-empty identifiers.
	ErrInvalidLevelID = errors.New("level ID must not be empty")

	// ErrDuplicateLevelID is returned by [Diagram.AddLevel] when a level with
	// the same ID already exists. Level IDs must be unique.
	ErrDuplicateLevelID = errors.New("duplicate level ID")

	// ErrNonPositiveWidth is returned by [Diagram.AddLevel] when the level
	// width is negative. A zero width is replaced with DefaultLevelWidth.
	ErrNonPositiveWidth = errors.New("level width must be positive")

	// ErrNonFiniteEnergy is returned by [Diagram.AddLevel] when the energy
	// value is NaN or infinite.
	ErrNonFiniteEnergy = errors.New("level energy must be finite")

	// ErrUnknownSourceLevel is returned by [Diagram.AddTransition] when the
	// From level does not exist in the diagram.
	ErrUnknownSourceLevel = errors.New("unknown source level")

	// ErrUnknownTargetLevel is returned by [Diagram.AddTransition] when the
	// To level does not exist in the diagram.
	ErrUnknownTargetLevel = errors.New("unknown target level")

	// ErrInvalidTransitionStyle is returned by [Diagram.AddTransition] when
	// the style is not one of the defined [TransitionStyle] values.
	ErrInvalidTransitionStyle = errors.New("invalid transition style")
)

// DefaultLevelWidth is the horizontal extent assigned to a level whose
// width is left unset.
const DefaultLevelWidth = 1.0

// TransitionStyle selects how a transition is drawn.
type TransitionStyle string

const (
	// StyleOneWay is a straight arrow from source to target.
	StyleOneWay TransitionStyle = "one-way"
	// StyleTwoWay is a straight arrow with heads on both ends.
	StyleTwoWay TransitionStyle = "two-way"
	// StyleDecay is a wavy (sinusoidal) arrow, conventionally used for
	// spontaneous decay.
	StyleDecay TransitionStyle = "decay"
)

// Valid reports whether s is a defined transition style.
// The empty style is valid and treated as StyleOneWay.
func (s TransitionStyle) Valid() bool {
	switch s {
	case "", StyleOneWay, StyleTwoWay, StyleDecay:
		return true
	}
	return false
}

// Anchor selects where on a level segment a transition attaches.
type Anchor string

const (
	// AnchorCenter attaches at the segment midpoint. This is the default.
	AnchorCenter Anchor = "center"
	// AnchorLeft attaches at the left endpoint.
	AnchorLeft Anchor = "left"
	// AnchorRight attaches at the right endpoint.
	AnchorRight Anchor = "right"
)

// Level is a discrete energy state.
//
// Energy drives the vertical position; Group buckets levels that share a
// horizontal column. A nil XOffset means the layout engine chooses the
// horizontal position; a non-nil XOffset pins the segment center to that x
// and bypasses automatic placement entirely.
type Level struct {
	ID      string   // Unique identifier (also the default label text)
	Energy  float64  // Vertical position driver
	Group   string   // Column hint; empty means the shared default column
	Width   float64  // Horizontal extent of the segment (> 0)
	XOffset *float64 // Explicit segment-center x override (optional)
	Label   string   // Display label; empty means a ket around the ID
}

// Transition is a directed edge between two levels.
//
// Multiple transitions may share the same level pair or its reverse; such a
// "parallel group" is fanned apart by the router so the members stay
// visually distinct.
type Transition struct {
	From  string          // Source level ID
	To    string          // Target level ID
	Style TransitionStyle // Drawing style; empty means StyleOneWay
	Label string          // Display label (optional)

	// Anchor selects the attachment point on both level segments.
	// Empty means AnchorCenter.
	Anchor Anchor
	// Detuning shifts the arrival point below the target level by this many
	// energy units, for drawing off-resonant couplings.
	Detuning float64
	// WaveAmp and HalfPeriod shape decay-style transitions. Zero values fall
	// back to the layout configuration defaults.
	WaveAmp    float64
	HalfPeriod float64
}

// Diagram holds the levels and transitions of one energy level diagram.
//
// Insertion order is preserved for both levels and transitions: it is the
// deterministic tie-break the layout engine uses, so iteration order is part
// of the model's contract.
//
// The zero value is not usable - use New. Diagram is not safe for concurrent
// mutation; the layout engine only reads it.
type Diagram struct {
	levels      map[string]*Level
	order       []string // level IDs in insertion order
	transitions []Transition
}

// New creates an empty diagram.
func New() *Diagram {
	return &Diagram{levels: make(map[string]*Level)}
}

// AddLevel adds a level to the diagram.
// Returns ErrInvalidLevelID, ErrDuplicateLevelID, ErrNonFiniteEnergy, or
// ErrNonPositiveWidth on malformed input. A zero Width is replaced with
// DefaultLevelWidth before insertion.
func (d *Diagram) AddLevel(l Level) error {
	if l.ID == "" {
		return ErrInvalidLevelID
	}
	if _, exists := d.levels[l.ID]; exists {
		return ErrDuplicateLevelID
	}
	if math.IsNaN(l.Energy) || math.IsInf(l.Energy, 0) {
		return ErrNonFiniteEnergy
	}
	if l.Width == 0 {
		l.Width = DefaultLevelWidth
	}
	if l.Width < 0 {
		return ErrNonPositiveWidth
	}
	lv := &l
	d.levels[lv.ID] = lv
	d.order = append(d.order, lv.ID)
	return nil
}

// AddTransition adds a transition between two existing levels.
// Returns ErrUnknownSourceLevel or ErrUnknownTargetLevel for dangling
// references and ErrInvalidTransitionStyle for an undefined style.
// Self-transitions (From == To) are allowed and rendered as loops.
func (d *Diagram) AddTransition(t Transition) error {
	if _, ok := d.levels[t.From]; !ok {
		return ErrUnknownSourceLevel
	}
	if _, ok := d.levels[t.To]; !ok {
		return ErrUnknownTargetLevel
	}
	if !t.Style.Valid() {
		return ErrInvalidTransitionStyle
	}
	if t.Style == "" {
		t.Style = StyleOneWay
	}
	if t.Anchor == "" {
		t.Anchor = AnchorCenter
	}
	d.transitions = append(d.transitions, t)
	return nil
}

// RemoveLevel removes the level with the given ID if it exists.
// Transitions referencing the removed level are kept: they surface as
// ErrUnknownSourceLevel or ErrUnknownTargetLevel from Validate, so the
// dangling reference is rejected at the next layout pass instead of the
// diagram silently losing edges.
func (d *Diagram) RemoveLevel(id string) {
	if _, ok := d.levels[id]; !ok {
		return
	}
	delete(d.levels, id)
	d.order = slices.DeleteFunc(d.order, func(s string) bool { return s == id })
}

// RemoveTransition removes the first transition matching from→to.
// No-op if no such transition exists.
func (d *Diagram) RemoveTransition(from, to string) {
	for i, t := range d.transitions {
		if t.From == from && t.To == to {
			d.transitions = slices.Delete(d.transitions, i, i+1)
			return
		}
	}
}

// Level returns the level with the given ID and true, or nil and false.
func (d *Diagram) Level(id string) (*Level, bool) {
	l, ok := d.levels[id]
	return l, ok
}

// Levels returns all levels in insertion order.
// The slice contains pointers to the actual levels, so modifications
// affect the diagram.
func (d *Diagram) Levels() []*Level {
	out := make([]*Level, len(d.order))
	for i, id := range d.order {
		out[i] = d.levels[id]
	}
	return out
}

// Transitions returns a copy of all transitions in insertion order.
func (d *Diagram) Transitions() []Transition { return slices.Clone(d.transitions) }

// LevelCount returns the number of levels.
func (d *Diagram) LevelCount() int { return len(d.levels) }

// TransitionCount returns the number of transitions.
func (d *Diagram) TransitionCount() int { return len(d.transitions) }

// Groups returns the distinct group names in column order: the default
// (empty) group first if present, then the rest sorted lexically.
func (d *Diagram) Groups() []string {
	seen := make(map[string]bool)
	var names []string
	for _, id := range d.order {
		g := d.levels[id].Group
		if !seen[g] {
			seen[g] = true
			names = append(names, g)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == "": // default column sorts first
			return -1
		case b == "":
			return 1
		case a < b:
			return -1
		}
		return 1
	})
	return names
}

// LevelsInGroup returns the levels of one group in insertion order.
func (d *Diagram) LevelsInGroup(group string) []*Level {
	var out []*Level
	for _, id := range d.order {
		if l := d.levels[id]; l.Group == group {
			out = append(out, l)
		}
	}
	return out
}

// Validate checks diagram integrity and returns the first violation found.
//
// AddLevel and AddTransition already reject malformed input, but diagrams
// decoded from documents are assembled field by field, so Validate re-checks
// the full invariant set: finite energies, positive widths, valid styles,
// and transition endpoints that resolve to existing levels. Each violation
// wraps its sentinel with the offending level or transition so callers can
// both match with errors.Is and name the culprit.
func (d *Diagram) Validate() error {
	for _, id := range d.order {
		l := d.levels[id]
		if math.IsNaN(l.Energy) || math.IsInf(l.Energy, 0) {
			return fmt.Errorf("level %s: %w", id, ErrNonFiniteEnergy)
		}
		if l.Width <= 0 {
			return fmt.Errorf("level %s: %w", id, ErrNonPositiveWidth)
		}
	}
	for _, t := range d.transitions {
		if _, ok := d.levels[t.From]; !ok {
			return fmt.Errorf("transition %s→%s: %w", t.From, t.To, ErrUnknownSourceLevel)
		}
		if _, ok := d.levels[t.To]; !ok {
			return fmt.Errorf("transition %s→%s: %w", t.From, t.To, ErrUnknownTargetLevel)
		}
		if !t.Style.Valid() {
			return fmt.Errorf("transition %s→%s: %w", t.From, t.To, ErrInvalidTransitionStyle)
		}
	}
	return nil
}

// InsertionIndex returns the position at which the level was added, used as
// the deterministic tie-break for equal energies. Returns -1 if the level
// does not exist.
func (d *Diagram) InsertionIndex(id string) int {
	return slices.Index(d.order, id)
}
