package diagram

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TOMLDocument is the human-editable diagram file format.
//
// A diagram file lists levels and transitions as TOML tables and may carry
// an optional [layout] section with engine options:
//
//	[layout]
//	scale = "linear"
//	label_side = "left"
//
//	[[level]]
//	id = "g"
//	energy = 0.0
//	group = "ground"
//
//	[[level]]
//	id = "e"
//	energy = 1.0
//	group = "excited"
//
//	[[transition]]
//	from = "g"
//	to = "e"
//	label = "Ω"
type TOMLDocument struct {
	Layout      LayoutHints     `toml:"layout"`
	Levels      []LevelDoc      `toml:"level"`
	Transitions []TransitionDoc `toml:"transition"`
}

// LayoutHints carries the layout options a diagram file may set.
// Zero values mean "use the engine default". The pipeline translates these
// into a layout configuration; keeping them as plain data here avoids a
// dependency from the model onto the engine.
type LayoutHints struct {
	Scale                string  `toml:"scale"`                  // "linear" or "log"
	CollisionThreshold   float64 `toml:"collision_threshold"`    // scaled y units
	LabelSide            string  `toml:"label_side"`             // "left", "right", "top", "bottom"
	LabelCollisionRadius float64 `toml:"label_collision_radius"` // axis units
	ParallelSpacing      float64 `toml:"parallel_spacing"`       // axis units
}

// DecodeTOML decodes a TOML diagram file into a diagram plus its layout hints.
func DecodeTOML(data []byte) (*Diagram, LayoutHints, error) {
	var doc TOMLDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, LayoutHints{}, fmt.Errorf("parse TOML: %w", err)
	}
	d, err := ToDiagram(Document{Levels: doc.Levels, Transitions: doc.Transitions})
	if err != nil {
		return nil, LayoutHints{}, err
	}
	return d, doc.Layout, nil
}

// DecodeTOMLFile reads and decodes a TOML diagram file.
func DecodeTOMLFile(path string) (*Diagram, LayoutHints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LayoutHints{}, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeTOML(data)
}
