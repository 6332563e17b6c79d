package layout

import (
	"math"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/geom"
)

// Label boxes are estimated from text length; the engine has no font
// metrics, only axis units.
const (
	labelCharWidth  = 0.12
	labelCharHeight = 0.2
)

// labelRect estimates the bounding box of a placed label.
func labelRect(lb LabelBox) geom.Rect {
	w := float64(len([]rune(lb.Text))) * labelCharWidth
	h := labelCharHeight

	var minX float64
	switch lb.Align.H {
	case "left":
		minX = lb.Anchor.X
	case "right":
		minX = lb.Anchor.X - w
	default:
		minX = lb.Anchor.X - w/2
	}

	var minY float64
	switch lb.Align.V {
	case "bottom":
		minY = lb.Anchor.Y
	case "top":
		minY = lb.Anchor.Y - h
	default:
		minY = lb.Anchor.Y - h/2
	}

	return geom.Rect{MinX: minX, MinY: minY, MaxX: minX + w, MaxY: minY + h}
}

// placeLevelLabels assigns each level a label anchor on the configured side
// and repairs collisions between neighboring labels by displacing the later
// label along the segment axis, away from the diagram center.
//
// This is a local-repair pass, not a global optimizer: it clears overlaps
// between adjacent pairs in a bounded number of iterations and reports a
// warning if the bound is hit.
func placeLevelLabels(d *diagram.Diagram, cfg Config, segs map[string]geom.Segment) ([]LevelSegment, []Warning) {
	levels := d.Levels()
	out := make([]LevelSegment, len(levels))
	for i, l := range levels {
		seg := segs[l.ID]
		text := l.Label
		if text == "" {
			text = diagram.Ket(l.ID)
		}
		out[i] = LevelSegment{
			ID:      l.ID,
			Segment: seg,
			Label:   sideLabel(text, seg, cfg),
		}
	}

	centerX := segmentsCenterX(out)
	boxes := make([]geom.Rect, len(out))
	for i := range out {
		boxes[i] = labelRect(out[i].Label)
	}

	exhausted := repairLoop(cfg, len(out), func(i, j int) bool {
		a, b := &out[i].Label, &out[j].Label
		if a.Anchor.Dist(b.Anchor) > cfg.LabelCollisionRadius {
			return false
		}
		if !boxes[i].Intersects(boxes[j]) {
			return false
		}
		dx := cfg.LabelPad
		if b.Anchor.X < centerX {
			dx = -dx
		}
		b.Anchor.X += dx
		boxes[j] = boxes[j].Translate(dx, 0)
		return true
	})

	if exhausted {
		return out, []Warning{{
			Code:    WarnLabelRepairExhausted,
			Message: "level label collision repair hit its iteration bound; geometry is best-effort",
		}}
	}
	return out, nil
}

// sideLabel builds the initial label placement for one level segment.
func sideLabel(text string, seg geom.Segment, cfg Config) LabelBox {
	pad := cfg.LabelPad
	switch cfg.LabelSide {
	case SideRight:
		return LabelBox{Text: text, Anchor: geom.Point{X: seg.Right() + pad, Y: seg.Y()}, Align: Align{H: "left", V: "middle"}}
	case SideTop:
		return LabelBox{Text: text, Anchor: geom.Point{X: seg.CenterX(), Y: seg.Y() + pad}, Align: Align{H: "center", V: "bottom"}}
	case SideBottom:
		return LabelBox{Text: text, Anchor: geom.Point{X: seg.CenterX(), Y: seg.Y() - pad}, Align: Align{H: "center", V: "top"}}
	default:
		return LabelBox{Text: text, Anchor: geom.Point{X: seg.Left() - pad, Y: seg.Y()}, Align: Align{H: "right", V: "middle"}}
	}
}

// placeTransitionLabels fills in the label of each routed path: midpoint of
// the path, offset perpendicular to the travel direction, pointing away
// from the diagram center. Collisions among transition labels are repaired
// by further minimal displacements along the same perpendicular.
func placeTransitionLabels(d *diagram.Diagram, cfg Config, paths []TransitionPath, levels []LevelSegment) []Warning {
	center := centerOf(levels)

	normals := make([]geom.Point, len(paths))
	labeled := make([]int, 0, len(paths))
	for i, t := range d.Transitions() {
		if t.Label == "" {
			continue
		}
		p := &paths[i]
		mid := p.Points.Midpoint()
		n := perpendicular(p.Points)
		// Point the offset away from the diagram center.
		if n.X*(mid.X-center.X)+n.Y*(mid.Y-center.Y) < 0 {
			n = geom.Point{X: -n.X, Y: -n.Y}
		}
		normals[i] = n
		p.Label = LabelBox{
			Text:   t.Label,
			Anchor: geom.Point{X: mid.X + n.X*cfg.LabelPad, Y: mid.Y + n.Y*cfg.LabelPad},
			Align:  Align{H: "center", V: "middle"},
		}
		labeled = append(labeled, i)
	}

	boxes := make(map[int]geom.Rect, len(labeled))
	for _, i := range labeled {
		boxes[i] = labelRect(paths[i].Label)
	}

	exhausted := repairLoop(cfg, len(labeled), func(a, b int) bool {
		i, j := labeled[a], labeled[b]
		la, lb := &paths[i].Label, &paths[j].Label
		if la.Anchor.Dist(lb.Anchor) > cfg.LabelCollisionRadius {
			return false
		}
		if !boxes[i].Intersects(boxes[j]) {
			return false
		}
		n := normals[j]
		dx, dy := n.X*cfg.LabelPad, n.Y*cfg.LabelPad
		lb.Anchor.X += dx
		lb.Anchor.Y += dy
		boxes[j] = boxes[j].Translate(dx, dy)
		return true
	})

	if exhausted {
		return []Warning{{
			Code:    WarnLabelRepairExhausted,
			Message: "transition label collision repair hit its iteration bound; geometry is best-effort",
		}}
	}
	return nil
}

// repairLoop runs the pairwise resolve function until a full pass makes no
// displacement or the iteration bound is hit. resolve(i, j) must displace
// the later element j and report whether it moved anything.
// Returns true when the bound was exhausted with collisions outstanding.
func repairLoop(cfg Config, n int, resolve func(i, j int) bool) bool {
	for iter := 0; iter < cfg.MaxRepairIterations; iter++ {
		moved := false
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if resolve(i, j) {
					moved = true
				}
			}
		}
		if !moved {
			return false
		}
	}
	return true
}

// perpendicular returns the unit normal of the path's end-to-end direction.
// Degenerate paths get a vertical normal.
func perpendicular(p geom.Path) geom.Point {
	a, b := p.Start(), p.End()
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return geom.Point{X: 0, Y: 1}
	}
	return geom.Point{X: -dy / length, Y: dx / length}
}

// segmentsCenterX returns the horizontal center of all level segments.
func segmentsCenterX(levels []LevelSegment) float64 {
	if len(levels) == 0 {
		return 0
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, l := range levels {
		minX = math.Min(minX, l.Segment.Left())
		maxX = math.Max(maxX, l.Segment.Right())
	}
	return (minX + maxX) / 2
}

// centerOf returns the center of the bounding box of all level segments.
func centerOf(levels []LevelSegment) geom.Point {
	if len(levels) == 0 {
		return geom.Point{}
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, l := range levels {
		minX = math.Min(minX, l.Segment.Left())
		maxX = math.Max(maxX, l.Segment.Right())
		minY = math.Min(minY, l.Segment.Y())
		maxY = math.Max(maxY, l.Segment.Y())
	}
	return geom.Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
}
