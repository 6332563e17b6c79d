package layout

import (
	"math"
	"sort"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/geom"
)

// solveLevels assigns every level a horizontal segment.
//
// Levels are bucketed into columns by group (default group first, then
// lexical order). Within a column, levels are sorted by scaled y; when two
// levels land within CollisionThreshold of each other they are nudged into
// separate slots to the right. Sorting is stable, so equal energies keep
// insertion order and the earlier level wins the earlier slot.
//
// Levels with an explicit XOffset are pinned to that center x and take no
// part in slot assignment.
func solveLevels(d *diagram.Diagram, cfg Config) map[string]geom.Segment {
	segs := make(map[string]geom.Segment, d.LevelCount())

	colBase := 0.0
	for _, group := range d.Groups() {
		members := d.LevelsInGroup(group)

		// Column slot width is driven by the widest auto-placed member.
		var maxW float64
		var auto []*diagram.Level
		for _, l := range members {
			if l.XOffset != nil {
				y := cfg.Scale(l.Energy)
				segs[l.ID] = horizontalSegment(*l.XOffset, y, l.Width)
				continue
			}
			auto = append(auto, l)
			maxW = math.Max(maxW, l.Width)
		}
		if len(auto) == 0 {
			colBase += cfg.ColumnGap
			continue
		}

		ys := make([]float64, len(auto))
		for i, l := range auto {
			ys[i] = cfg.Scale(l.Energy)
		}

		// Stable sort keeps insertion order across energy ties.
		idx := make([]int, len(auto))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return ys[idx[a]] < ys[idx[b]] })

		slotSpan := maxW + cfg.SlotGap
		var taken []slotEntry
		maxSlot := 0
		for _, i := range idx {
			l, y := auto[i], ys[i]
			slot := freeSlot(taken, y, cfg.CollisionThreshold)
			taken = append(taken, slotEntry{y: y, slot: slot})
			maxSlot = max(maxSlot, slot)

			cx := colBase + maxW/2 + float64(slot)*slotSpan
			segs[l.ID] = horizontalSegment(cx, y, l.Width)
		}

		colBase += maxW + float64(maxSlot)*slotSpan + cfg.ColumnGap
	}
	return segs
}

// slotEntry records an occupied slot at a given y within one column.
type slotEntry struct {
	y    float64
	slot int
}

// freeSlot returns the lowest slot index not occupied by a previously
// placed level within the collision threshold of y.
func freeSlot(taken []slotEntry, y, threshold float64) int {
	for slot := 0; ; slot++ {
		conflict := false
		for _, p := range taken {
			if p.slot == slot && math.Abs(p.y-y) < threshold {
				conflict = true
				break
			}
		}
		if !conflict {
			return slot
		}
	}
}

func horizontalSegment(cx, y, width float64) geom.Segment {
	return geom.Segment{
		Start: geom.Point{X: cx - width/2, Y: y},
		End:   geom.Point{X: cx + width/2, Y: y},
	}
}
