package layout

import (
	"encoding/json"
	"math"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/geom"
)

// =============================================================================
// Geometry - The Layout Engine's Output
// =============================================================================

// Align describes how label text hangs off its anchor point.
// H names the horizontal text edge sitting on the anchor ("left", "center",
// "right"); V names the vertical reference ("top", "middle", "bottom").
type Align struct {
	H string `json:"h" bson:"h"`
	V string `json:"v" bson:"v"`
}

// LabelBox is a placed label: text, anchor point, and alignment.
type LabelBox struct {
	Text   string     `json:"text,omitempty" bson:"text,omitempty"`
	Anchor geom.Point `json:"anchor" bson:"anchor"`
	Align  Align      `json:"align" bson:"align"`
}

// LevelSegment is the computed geometry of one level: the horizontal
// segment plus its placed label.
type LevelSegment struct {
	ID      string       `json:"id" bson:"id"`
	Segment geom.Segment `json:"segment" bson:"segment"`
	Label   LabelBox     `json:"label" bson:"label"`
}

// TransitionPath is the computed geometry of one transition: the control
// points of its path, optional arrowheads, and the placed label.
//
// GroupIndex/GroupSize identify the transition's slot within its parallel
// group (both zero-based index and total count are stable across runs).
type TransitionPath struct {
	From       string                  `json:"from" bson:"from"`
	To         string                  `json:"to" bson:"to"`
	Style      diagram.TransitionStyle `json:"style" bson:"style"`
	GroupIndex int                     `json:"group_index" bson:"group_index"`
	GroupSize  int                     `json:"group_size" bson:"group_size"`
	Points     geom.Path               `json:"points" bson:"points"`
	Head       *geom.Point             `json:"head,omitempty" bson:"head,omitempty"`
	Tail       *geom.Point             `json:"tail,omitempty" bson:"tail,omitempty"`
	Label      LabelBox                `json:"label" bson:"label"`
}

// Warning reports a non-fatal layout degeneracy. The geometry is still
// complete and renderable; the caller decides whether to surface it.
type Warning struct {
	Code    WarningCode `json:"code" bson:"code"`
	Message string      `json:"message" bson:"message"`
}

// WarningCode identifies a warning category.
type WarningCode string

const (
	// WarnLabelRepairExhausted means label collision repair hit its
	// iteration bound before clearing every overlap.
	WarnLabelRepairExhausted WarningCode = "LABEL_REPAIR_EXHAUSTED"
)

// Geometry is the complete output of one layout pass: plain data, created
// fresh per invocation and never mutated in place. Every level and
// transition of the input diagram appears exactly once.
type Geometry struct {
	Levels      []LevelSegment   `json:"levels" bson:"levels"`
	Transitions []TransitionPath `json:"transitions" bson:"transitions"`
	Warnings    []Warning        `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// Level returns the segment geometry for a level ID, or false.
func (g Geometry) Level(id string) (LevelSegment, bool) {
	for _, l := range g.Levels {
		if l.ID == id {
			return l, true
		}
	}
	return LevelSegment{}, false
}

// Bounds returns the bounding box of all segments, paths, and label
// anchors. Returns a zero rect for empty geometry.
func (g Geometry) Bounds() geom.Rect {
	r := geom.Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	grow := func(p geom.Point) {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	for _, l := range g.Levels {
		grow(l.Segment.Start)
		grow(l.Segment.End)
		if l.Label.Text != "" {
			grow(l.Label.Anchor)
		}
	}
	for _, t := range g.Transitions {
		for _, p := range t.Points {
			grow(p)
		}
		if t.Label.Text != "" {
			grow(t.Label.Anchor)
		}
	}
	if math.IsInf(r.MinX, 1) {
		return geom.Rect{}
	}
	return r
}

// MarshalGeometry serializes geometry to JSON bytes.
func MarshalGeometry(g Geometry) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGeometry deserializes JSON bytes to geometry.
func UnmarshalGeometry(data []byte) (Geometry, error) {
	var g Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return Geometry{}, err
	}
	return g, nil
}
