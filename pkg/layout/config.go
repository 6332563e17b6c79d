package layout

import (
	"math"

	"github.com/dihm/leveldiagram/pkg/diagram"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Pipeline
// =============================================================================

const (
	// DefaultCollisionThreshold is the scaled-y distance below which two
	// levels in the same column are nudged into separate horizontal slots.
	DefaultCollisionThreshold = 0.12

	// DefaultColumnGap is the horizontal gap between group columns.
	DefaultColumnGap = 0.5

	// DefaultSlotGap is the horizontal gap between collision slots inside
	// one column.
	DefaultSlotGap = 0.25

	// DefaultLabelCollisionRadius bounds the neighborhood in which sibling
	// labels are tested for overlap.
	DefaultLabelCollisionRadius = 0.35

	// DefaultLabelPad is the gap between an element and its label, and the
	// minimal increment used during collision repair.
	DefaultLabelPad = 0.15

	// DefaultParallelSpacing is the horizontal offset between adjacent
	// members of a parallel transition group.
	DefaultParallelSpacing = 0.12

	// DefaultArrowSize is the arrowhead length. The drawn line is shortened
	// by this much so the line does not poke through the head.
	DefaultArrowSize = 0.15

	// DefaultWaveAmp and DefaultHalfPeriod shape decay-style transitions
	// that do not override them.
	DefaultWaveAmp    = 0.1
	DefaultHalfPeriod = 0.1

	// DefaultMaxRepairIterations bounds the label collision repair loop.
	// Exhaustion is not fatal: best-effort geometry is emitted along with a
	// warning.
	DefaultMaxRepairIterations = 32
)

// Side names the side of a level segment where its label sits.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Valid reports whether s is a defined side. Empty means SideLeft.
func (s Side) Valid() bool {
	switch s {
	case "", SideLeft, SideRight, SideTop, SideBottom:
		return true
	}
	return false
}

// Scale maps an energy value to a y coordinate. Implementations must be
// monotonically increasing so that higher energy always lands higher.
type Scale func(energy float64) float64

// LinearScale is the identity scale: y equals energy.
func LinearScale() Scale {
	return func(e float64) float64 { return e }
}

// LogScale maps energy to log10(energy), clamping values below floor to
// floor. The floor must be positive.
func LogScale(floor float64) Scale {
	if floor <= 0 {
		floor = 1e-9
	}
	return func(e float64) float64 {
		if e < floor {
			e = floor
		}
		return math.Log10(e)
	}
}

// AutoLogScale builds a log scale floored at the smallest positive energy
// among the given levels. Non-positive energies all clamp to that floor
// rather than failing: a scale choice must not turn a valid diagram into a
// configuration error.
func AutoLogScale(levels []*diagram.Level) Scale {
	floor := math.Inf(1)
	for _, l := range levels {
		if l.Energy > 0 && l.Energy < floor {
			floor = l.Energy
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1
	}
	return LogScale(floor)
}

// Config holds one layout pass's options. It is passed by value and never
// mutated by the engine; zero fields take the documented defaults.
type Config struct {
	// Scale converts energies to y coordinates. Nil means LinearScale.
	Scale Scale

	// CollisionThreshold is the scaled-y distance below which same-column
	// levels get separate horizontal slots.
	CollisionThreshold float64

	// ColumnGap and SlotGap control horizontal spacing between group
	// columns and between collision slots within a column.
	ColumnGap float64
	SlotGap   float64

	// LabelSide is the default side for level labels.
	LabelSide Side

	// LabelCollisionRadius bounds the label overlap neighborhood.
	LabelCollisionRadius float64

	// LabelPad is the element-to-label gap and the repair increment.
	LabelPad float64

	// ParallelSpacing is the fan offset between parallel transitions.
	ParallelSpacing float64

	// ArrowSize is the arrowhead length in axis units.
	ArrowSize float64

	// WaveAmp and HalfPeriod are the decay-style wave defaults.
	WaveAmp    float64
	HalfPeriod float64

	// MaxRepairIterations bounds label collision repair.
	MaxRepairIterations int
}

// DefaultConfig returns a config with every option at its default.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

// withDefaults fills zero fields with the documented defaults.
func (c Config) withDefaults() Config {
	if c.Scale == nil {
		c.Scale = LinearScale()
	}
	if c.CollisionThreshold == 0 {
		c.CollisionThreshold = DefaultCollisionThreshold
	}
	if c.ColumnGap == 0 {
		c.ColumnGap = DefaultColumnGap
	}
	if c.SlotGap == 0 {
		c.SlotGap = DefaultSlotGap
	}
	if c.LabelSide == "" {
		c.LabelSide = SideLeft
	}
	if c.LabelCollisionRadius == 0 {
		c.LabelCollisionRadius = DefaultLabelCollisionRadius
	}
	if c.LabelPad == 0 {
		c.LabelPad = DefaultLabelPad
	}
	if c.ParallelSpacing == 0 {
		c.ParallelSpacing = DefaultParallelSpacing
	}
	if c.ArrowSize == 0 {
		c.ArrowSize = DefaultArrowSize
	}
	if c.WaveAmp == 0 {
		c.WaveAmp = DefaultWaveAmp
	}
	if c.HalfPeriod == 0 {
		c.HalfPeriod = DefaultHalfPeriod
	}
	if c.MaxRepairIterations == 0 {
		c.MaxRepairIterations = DefaultMaxRepairIterations
	}
	return c
}
