package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/geom"
	"github.com/dihm/leveldiagram/pkg/layout"
)

// Rendering defaults in axis units (margin) and pixels per axis unit (scale).
const (
	defaultScale    = 120.0
	defaultMargin   = 0.4
	defaultFontSize = 14.0
	arrowWidthRatio = 0.6
)

type RenderOption func(*renderer)

type renderer struct {
	scale           float64
	margin          float64
	fontSize        float64
	levelColor      string
	transitionColor string
	labelColor      string
	background      string
}

// WithScale sets the pixels-per-axis-unit conversion factor.
func WithScale(s float64) RenderOption { return func(r *renderer) { r.scale = s } }

// WithMargin sets the whitespace around the diagram, in axis units.
func WithMargin(m float64) RenderOption { return func(r *renderer) { r.margin = m } }

// WithFontSize sets the label font size in pixels.
func WithFontSize(px float64) RenderOption { return func(r *renderer) { r.fontSize = px } }

// WithLevelColor sets the stroke color for level segments.
func WithLevelColor(c string) RenderOption { return func(r *renderer) { r.levelColor = c } }

// WithTransitionColor sets the stroke color for transition arrows.
func WithTransitionColor(c string) RenderOption { return func(r *renderer) { r.transitionColor = c } }

// WithBackground sets the background fill. The default is transparent.
func WithBackground(c string) RenderOption { return func(r *renderer) { r.background = c } }

func newRenderer(opts ...RenderOption) renderer {
	r := renderer{
		scale:           defaultScale,
		margin:          defaultMargin,
		fontSize:        defaultFontSize,
		levelColor:      "#1a1a1a",
		transitionColor: "#1a1a1a",
		labelColor:      "#1a1a1a",
		background:      "transparent",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders computed layout geometry as a standalone SVG document.
//
// Geometry uses mathematical axes (y grows upward); the renderer flips the
// vertical axis into SVG screen coordinates. Warnings carried by the
// geometry do not affect rendering.
func RenderSVG(g layout.Geometry, opts ...RenderOption) []byte {
	r := newRenderer(opts...)

	bounds := g.Bounds()
	w := (bounds.MaxX - bounds.MinX + 2*r.margin) * r.scale
	h := (bounds.MaxY - bounds.MinY + 2*r.margin) * r.scale
	if w <= 0 || math.IsInf(w, 0) {
		w, h = r.scale, r.scale
	}

	// Axis units to pixels, flipping y.
	px := func(p geom.Point) (float64, float64) {
		return (p.X - bounds.MinX + r.margin) * r.scale,
			(bounds.MaxY + r.margin - p.Y) * r.scale
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.background != "transparent" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	for _, l := range g.Levels {
		x1, y1 := px(l.Segment.Start)
		x2, y2 := px(l.Segment.End)
		fmt.Fprintf(&buf, `  <line class="level" id="level-%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2.5"/>`+"\n",
			escapeXML(l.ID), x1, y1, x2, y2, r.levelColor)
	}

	for i, t := range g.Transitions {
		r.renderTransition(&buf, i, t, px)
	}

	for _, l := range g.Levels {
		r.renderLabel(&buf, l.Label, px)
	}
	for _, t := range g.Transitions {
		if t.Label.Text != "" {
			r.renderLabel(&buf, t.Label, px)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderTransition(buf *bytes.Buffer, i int, t layout.TransitionPath, px func(geom.Point) (float64, float64)) {
	if len(t.Points) == 0 {
		return
	}

	var pts bytes.Buffer
	for j, p := range t.Points {
		if j > 0 {
			pts.WriteByte(' ')
		}
		x, y := px(p)
		fmt.Fprintf(&pts, "%.1f,%.1f", x, y)
	}
	fmt.Fprintf(buf, `  <polyline class="transition %s" id="transition-%d" points="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
		styleClass(t.Style), i, pts.String(), r.transitionColor)

	if t.Head != nil {
		r.renderArrowhead(buf, *t.Head, headDirection(t), px)
	}
	if t.Tail != nil {
		r.renderArrowhead(buf, *t.Tail, tailDirection(t), px)
	}
}

// headDirection points from the drawn path toward the arrow tip.
func headDirection(t layout.TransitionPath) geom.Point {
	tip := *t.Head
	base := t.Points.End()
	d := geom.Point{X: tip.X - base.X, Y: tip.Y - base.Y}
	if d.X == 0 && d.Y == 0 && len(t.Points) >= 2 {
		prev := t.Points[len(t.Points)-2]
		d = geom.Point{X: tip.X - prev.X, Y: tip.Y - prev.Y}
	}
	return d
}

func tailDirection(t layout.TransitionPath) geom.Point {
	tip := *t.Tail
	base := t.Points.Start()
	d := geom.Point{X: tip.X - base.X, Y: tip.Y - base.Y}
	if d.X == 0 && d.Y == 0 && len(t.Points) >= 2 {
		next := t.Points[1]
		d = geom.Point{X: tip.X - next.X, Y: tip.Y - next.Y}
	}
	return d
}

// renderArrowhead draws a filled triangle with its tip at the given point,
// pointing along dir (axis units, y up).
func (r *renderer) renderArrowhead(buf *bytes.Buffer, tip, dir geom.Point, px func(geom.Point) (float64, float64)) {
	length := math.Hypot(dir.X, dir.Y)
	if length == 0 {
		dir, length = geom.Point{X: 0, Y: 1}, 1
	}
	ux, uy := dir.X/length, dir.Y/length
	nx, ny := -uy, ux

	const size = 0.12
	half := size * arrowWidthRatio / 2
	back := geom.Point{X: tip.X - ux*size, Y: tip.Y - uy*size}
	left := geom.Point{X: back.X + nx*half, Y: back.Y + ny*half}
	right := geom.Point{X: back.X - nx*half, Y: back.Y - ny*half}

	tx, ty := px(tip)
	lx, ly := px(left)
	rx, ry := px(right)
	fmt.Fprintf(buf, `  <polygon class="arrowhead" points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s"/>`+"\n",
		tx, ty, lx, ly, rx, ry, r.transitionColor)
}

func (r *renderer) renderLabel(buf *bytes.Buffer, lb layout.LabelBox, px func(geom.Point) (float64, float64)) {
	if lb.Text == "" {
		return
	}
	x, y := px(lb.Anchor)
	fmt.Fprintf(buf, `  <text class="label" x="%.1f" y="%.1f" font-size="%.0f" fill="%s" text-anchor="%s" dominant-baseline="%s">%s</text>`+"\n",
		x, y, r.fontSize, r.labelColor, textAnchor(lb.Align.H), baseline(lb.Align.V), escapeXML(lb.Text))
}

func styleClass(s diagram.TransitionStyle) string {
	switch s {
	case diagram.StyleTwoWay:
		return "two-way"
	case diagram.StyleDecay:
		return "decay"
	default:
		return "one-way"
	}
}

func textAnchor(h string) string {
	switch h {
	case "left":
		return "start"
	case "right":
		return "end"
	default:
		return "middle"
	}
}

// baseline maps vertical alignment from mathematical axes (y up) into SVG
// baselines (y down): a label anchored at its bottom edge sits on the
// baseline, one anchored at its top hangs below it.
func baseline(v string) string {
	switch v {
	case "bottom":
		return "auto"
	case "top":
		return "hanging"
	default:
		return "central"
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
