// Package geom provides the plain 2-D primitives used by the layout engine.
//
// All types are small value types with no behavior beyond derived accessors,
// so computed geometry can be serialized and handed to any rendering backend.
package geom

import "math"

// Point is a position in diagram coordinates (x right, y up).
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns the point translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{p.X + dx, p.Y + dy} }

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Segment is a straight line between two endpoints.
// Level segments are horizontal: Start.Y == End.Y and Start.X < End.X.
type Segment struct {
	Start Point `json:"start" bson:"start"`
	End   Point `json:"end" bson:"end"`
}

// Left returns the smaller x coordinate of the segment.
func (s Segment) Left() float64 { return math.Min(s.Start.X, s.End.X) }

// Right returns the larger x coordinate of the segment.
func (s Segment) Right() float64 { return math.Max(s.Start.X, s.End.X) }

// CenterX returns the horizontal center of the segment.
func (s Segment) CenterX() float64 { return (s.Start.X + s.End.X) / 2 }

// Y returns the vertical position of a horizontal segment.
func (s Segment) Y() float64 { return s.Start.Y }

// Width returns the horizontal span of the segment.
func (s Segment) Width() float64 { return s.Right() - s.Left() }

// Center returns the midpoint of the segment.
func (s Segment) Center() Point {
	return Point{(s.Start.X + s.End.X) / 2, (s.Start.Y + s.End.Y) / 2}
}

// Path is an ordered sequence of control points.
// A straight path has two points; wavy and loop paths have more.
type Path []Point

// Start returns the first control point. Panics on an empty path.
func (p Path) Start() Point { return p[0] }

// End returns the last control point. Panics on an empty path.
func (p Path) End() Point { return p[len(p)-1] }

// Midpoint returns the point halfway along the straight line between the
// path's endpoints. For routing purposes this is the label reference point.
func (p Path) Midpoint() Point {
	a, b := p.Start(), p.End()
	return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// Length returns the total polyline length.
func (p Path) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += p[i-1].Dist(p[i])
	}
	return total
}

// Rect is an axis-aligned bounding box, used for label collision tests.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectAround builds a rect of the given size centered on p.
func RectAround(p Point, w, h float64) Rect {
	return Rect{p.X - w/2, p.Y - h/2, p.X + w/2, p.Y + h/2}
}

// Intersects reports whether the two rects overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Translate returns the rect shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{r.MinX + dx, r.MinY + dy, r.MaxX + dx, r.MaxY + dy}
}
