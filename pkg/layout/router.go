package layout

import (
	"math"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/geom"
)

const (
	waveSamples = 151
	loopSamples = 25
)

// pairKey identifies a parallel group: the unordered level pair.
type pairKey struct {
	lo, hi string
}

func makePairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// routeTransitions computes one path per transition.
//
// Transitions sharing an unordered level pair form a parallel group and are
// fanned apart with evenly spaced horizontal offsets. Within a group,
// members running in the first member's direction keep the inner slots in
// insertion order; opposite-direction members take the outer slots, so the
// two directions stay visually separated. Self-transitions become loops
// anchored to the right end of the segment with radii growing per member.
//
// The returned slice matches the diagram's transition insertion order.
func routeTransitions(d *diagram.Diagram, cfg Config, segs map[string]geom.Segment) []TransitionPath {
	trs := d.Transitions()
	paths := make([]TransitionPath, len(trs))

	groups := make(map[pairKey][]int)
	var order []pairKey
	for i, t := range trs {
		k := makePairKey(t.From, t.To)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		idxs := groups[k]
		if k.lo == k.hi {
			for j, i := range idxs {
				paths[i] = routeLoop(trs[i], segs[k.lo], j, len(idxs), cfg)
			}
			continue
		}
		routeFan(d, cfg, segs, trs, idxs, paths)
	}
	return paths
}

// routeFan routes one parallel group between two distinct levels.
func routeFan(d *diagram.Diagram, cfg Config, segs map[string]geom.Segment, trs []diagram.Transition, idxs []int, paths []TransitionPath) {
	first := trs[idxs[0]]
	ordered := make([]int, 0, len(idxs))
	for _, i := range idxs {
		if trs[i].From == first.From {
			ordered = append(ordered, i)
		}
	}
	for _, i := range idxs {
		if trs[i].From != first.From {
			ordered = append(ordered, i)
		}
	}

	k := len(ordered)
	for pos, i := range ordered {
		t := trs[i]
		offset := cfg.ParallelSpacing * (float64(pos) - float64(k-1)/2)

		src, dst := segs[t.From], segs[t.To]
		sx := anchorX(src, t.Anchor) + offset
		dx := anchorX(dst, t.Anchor) + offset
		sy := src.Y()

		// Detuning is applied in energy units so it composes with the scale.
		target, _ := d.Level(t.To)
		dy := cfg.Scale(target.Energy - t.Detuning)

		if k == 1 && t.Anchor == diagram.AnchorCenter {
			shift := crossingShift(d, segs, t, sx, dx, sy, dy, cfg)
			sx += shift
			dx += shift
		}

		paths[i] = buildPath(t, geom.Point{X: sx, Y: sy}, geom.Point{X: dx, Y: dy}, pos, k, cfg)
	}
}

// crossingShift finds a common horizontal shift for both attachment points
// that moves the straight path off any level segment drawn strictly between
// the source and target heights. Returns 0 when the direct path is clear or
// no clearing shift exists.
func crossingShift(d *diagram.Diagram, segs map[string]geom.Segment, t diagram.Transition, sx, dx, sy, dy float64, cfg Config) float64 {
	if sy == dy {
		return 0
	}
	lowY, highY := math.Min(sy, dy), math.Max(sy, dy)
	margin := cfg.ParallelSpacing

	var shift float64
	for _, l := range d.Levels() {
		if l.ID == t.From || l.ID == t.To {
			continue
		}
		seg := segs[l.ID]
		y := seg.Y()
		if y <= lowY || y >= highY {
			continue
		}
		// x where the (shifted) straight path crosses this level's height.
		frac := (y - sy) / (dy - sy)
		x := sx + shift + frac*(dx-sx)
		if x <= seg.Left() || x >= seg.Right() {
			continue
		}
		left := seg.Left() - margin - x
		right := seg.Right() + margin - x
		if math.Abs(left) <= math.Abs(right) {
			shift += left
		} else {
			shift += right
		}
	}
	return shift
}

// buildPath constructs the control points for one transition.
func buildPath(t diagram.Transition, start, end geom.Point, pos, size int, cfg Config) TransitionPath {
	p := TransitionPath{
		From:       t.From,
		To:         t.To,
		Style:      t.Style,
		GroupIndex: pos,
		GroupSize:  size,
	}

	head := end
	p.Head = &head
	if t.Style == diagram.StyleTwoWay {
		tail := start
		p.Tail = &tail
	}

	switch t.Style {
	case diagram.StyleDecay:
		p.Points = wavePath(start, end, t, cfg)
	default:
		lineStart, lineEnd := shortenLine(start, end, tailLen(t, cfg), cfg.ArrowSize)
		p.Points = geom.Path{lineStart, lineEnd}
	}
	return p
}

func tailLen(t diagram.Transition, cfg Config) float64 {
	if t.Style == diagram.StyleTwoWay {
		return cfg.ArrowSize
	}
	return 0
}

// shortenLine pulls the endpoints in along the line direction so the drawn
// line stops where the arrowheads begin. Lines too short to shorten are
// returned unchanged.
func shortenLine(a, b geom.Point, fromA, fromB float64) (geom.Point, geom.Point) {
	length := a.Dist(b)
	if length <= fromA+fromB || length == 0 {
		return a, b
	}
	ux := (b.X - a.X) / length
	uy := (b.Y - a.Y) / length
	return geom.Point{X: a.X + ux*fromA, Y: a.Y + uy*fromA},
		geom.Point{X: b.X - ux*fromB, Y: b.Y - uy*fromB}
}

// wavePath samples a sine wave along the line from start to end, stopping
// short of the arrowhead. The phase is chosen so the wave meets the head at
// a zero crossing.
func wavePath(start, end geom.Point, t diagram.Transition, cfg Config) geom.Path {
	amp := t.WaveAmp
	if amp == 0 {
		amp = cfg.WaveAmp
	}
	half := t.HalfPeriod
	if half == 0 {
		half = cfg.HalfPeriod
	}

	length := start.Dist(end)
	if length == 0 {
		return geom.Path{start, end}
	}
	ux := (end.X - start.X) / length
	uy := (end.Y - start.Y) / length
	// Perpendicular unit vector.
	nx, ny := -uy, ux

	omega := math.Pi / half
	phase := omega * cfg.ArrowSize
	span := length - cfg.ArrowSize
	if span <= 0 {
		span = length
	}

	path := make(geom.Path, waveSamples)
	for i := range path {
		along := span * float64(i) / float64(waveSamples-1)
		perp := amp / 2 * math.Sin(omega*along+phase)
		path[i] = geom.Point{
			X: start.X + ux*along + nx*perp,
			Y: start.Y + uy*along + ny*perp,
		}
	}
	return path
}

// routeLoop renders a self-transition as a circular arc hanging off the
// right end of the level segment. Parallel loops grow outward so no two
// coincide.
func routeLoop(t diagram.Transition, seg geom.Segment, j, size int, cfg Config) TransitionPath {
	r := cfg.ArrowSize + cfg.ParallelSpacing*float64(j+1)
	center := geom.Point{X: seg.Right() + r, Y: seg.Y()}

	const startDeg, endDeg = 135.0, -135.0
	path := make(geom.Path, loopSamples)
	for i := range path {
		deg := startDeg + (endDeg-startDeg)*float64(i)/float64(loopSamples-1)
		rad := deg * math.Pi / 180
		path[i] = geom.Point{
			X: center.X + r*math.Cos(rad),
			Y: center.Y + r*math.Sin(rad),
		}
	}

	head := path.End()
	return TransitionPath{
		From:       t.From,
		To:         t.To,
		Style:      t.Style,
		GroupIndex: j,
		GroupSize:  size,
		Points:     path,
		Head:       &head,
	}
}

func anchorX(s geom.Segment, a diagram.Anchor) float64 {
	switch a {
	case diagram.AnchorLeft:
		return s.Left()
	case diagram.AnchorRight:
		return s.Right()
	default:
		return s.CenterX()
	}
}
