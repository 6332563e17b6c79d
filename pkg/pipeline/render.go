package pipeline

import (
	"fmt"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/layout"
	"github.com/dihm/leveldiagram/pkg/render"
)

// RenderFromGeometry generates output artifacts in the requested formats.
//
// SVG is rendered directly from the geometry; PNG and PDF are converted
// from that SVG. JSON serializes the geometry itself, and DOT exports the
// diagram's connectivity through Graphviz notation.
func RenderFromGeometry(g layout.Geometry, d *diagram.Diagram, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(g, svgOpts...)
		case FormatPNG:
			data, err = render.ToPNG(render.RenderSVG(g, svgOpts...), 2.0)
		case FormatPDF:
			data, err = render.ToPDF(render.RenderSVG(g, svgOpts...))
		case FormatJSON:
			data, err = layout.MarshalGeometry(g)
		case FormatDOT:
			data = []byte(render.ToDOT(d, render.DOTOptions{}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions translates pipeline options into renderer options.
func buildSVGOptions(opts Options) []render.RenderOption {
	svgOpts := []render.RenderOption{
		render.WithScale(opts.RenderScale),
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, render.WithBackground(opts.Background))
	}
	return svgOpts
}
