// Package render turns computed layout geometry into visual outputs.
//
// # Overview
//
// This package contains the rendering sinks for energy level diagrams.
// It provides:
//
//   - SVG rendering of layout geometry ([RenderSVG])
//   - Node-link connectivity export via Graphviz ([ToDOT], [RenderDOTSVG])
//   - Generic format conversion (SVG to PDF/PNG)
//
// # SVG Rendering
//
// [RenderSVG] draws the level segments, transition arrows, and labels of a
// [layout.Geometry] into a standalone SVG. Geometry is expressed in
// mathematical axes with y growing upward; the renderer flips it into
// screen coordinates. Appearance is controlled with functional options:
//
//	svg := render.RenderSVG(geometry, render.WithScale(150), render.WithBackground("white"))
//
// # Node-Link Export
//
// [ToDOT] exports the diagram's connectivity as a Graphviz DOT digraph,
// useful for inspecting level structure without running the layout engine.
// [RenderDOTSVG] rasterizes it with the embedded Graphviz engine.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := render.RenderSVG(geometry)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [layout.Geometry]: github.com/dihm/leveldiagram/pkg/layout
package render
