package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/dihm/leveldiagram/pkg/diagram"
)

// DOTOptions configures node-link DOT export.
type DOTOptions struct {
	// Detailed includes energy and group values in node labels.
	// When false, only the level label (or ket) is shown.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT format for node-link
// visualization: levels become boxes, transitions become arrows. The layout
// is left entirely to Graphviz; this export is for inspecting connectivity,
// not for publication figures.
//
// Two-way transitions are rendered with dir=both, decay transitions with a
// dashed line.
func ToDOT(d *diagram.Diagram, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, l := range d.Levels() {
		label := fmtLabel(l, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", l.ID, label)
	}

	buf.WriteString("\n")
	for _, t := range d.Transitions() {
		attrs := fmtEdgeAttrs(t)
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", t.From, t.To, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", t.From, t.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(l *diagram.Level, detailed bool) string {
	label := l.Label
	if label == "" {
		label = diagram.Ket(l.ID)
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("energy: %g", l.Energy)}
	if l.Group != "" {
		parts = append(parts, fmt.Sprintf("group: %s", l.Group))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtEdgeAttrs(t diagram.Transition) []string {
	var attrs []string
	switch t.Style {
	case diagram.StyleTwoWay:
		attrs = append(attrs, "dir=both")
	case diagram.StyleDecay:
		attrs = append(attrs, "style=dashed")
	}
	if t.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", t.Label))
	}
	return attrs
}

// RenderDOTSVG renders a DOT graph to SVG using Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
