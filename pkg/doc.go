// Package pkg provides the core libraries for energy level diagram layout.
//
// # Overview
//
// Leveldiagram turns a declarative description of an atomic energy level
// structure into computed drawing geometry: horizontal level segments on
// an energy axis, arrow paths for driven and decay transitions, and
// collision-free label placements. The pkg directory is organized into
// five main areas:
//
//  1. [diagram] - The diagram model (levels, transitions, serialization)
//  2. [layout] - The layout solver (level placement, routing, labels)
//  3. [render] - Output generation (SVG, DOT, PDF/PNG conversion)
//  4. [pipeline] - Orchestration (layout → render) with caching
//  5. [store] - Document persistence (memory, MongoDB)
//
// # Architecture
//
// The typical data flow:
//
//	Diagram file (JSON/TOML)
//	         ↓
//	    [diagram] package (model + validation)
//	         ↓
//	    [layout] package (levels → transitions → labels)
//	         ↓
//	    [render] package (SVG/DOT, PDF/PNG conversion)
//	         ↓
//	    SVG/PNG/PDF/JSON/DOT output
//
// # Quick Start
//
// Build a diagram and render it to SVG:
//
//	import (
//	    "github.com/dihm/leveldiagram/pkg/diagram"
//	    "github.com/dihm/leveldiagram/pkg/layout"
//	    "github.com/dihm/leveldiagram/pkg/render"
//	)
//
//	// 1. Describe the level structure
//	d := diagram.New()
//	d.AddLevel(diagram.Level{ID: "g", Energy: 0})
//	d.AddLevel(diagram.Level{ID: "e", Energy: 1})
//	d.AddTransition(diagram.Transition{From: "g", To: "e", Label: "Ω"})
//
//	// 2. Solve the layout
//	g, _ := layout.Build(d, layout.DefaultConfig())
//
//	// 3. Render to SVG
//	svg := render.RenderSVG(g)
//
// # Main Packages
//
// [diagram] - The level diagram model: levels with energies and groups,
// one-way, two-way, and decay transitions, Dirac notation helpers, and
// JSON/TOML codecs.
//
// [layout] - The layout solver. Maps energies to vertical positions
// (linear or log scale), stacks near-degenerate levels into rows, fans
// parallel transitions apart, routes self-loops and wavy decay arrows,
// and repairs label collisions.
//
// [geom] - Small geometric primitives (points, segments, paths, rects)
// shared by the solver and renderers.
//
// [render] - Output generation: native SVG rendering of computed
// geometry, Graphviz DOT export of the diagram topology, and SVG to
// PDF/PNG conversion.
//
// [pipeline] - Complete layout → render pipeline used by CLI and API.
// Ensures consistent caching and validation across all entry points.
//
// [cache] - Content-addressed result caching with file, Redis, and
// null backends plus hierarchical cache keys (diagram → layout →
// artifact).
//
// [store] - Document gallery persistence with in-memory and MongoDB
// backends.
//
// [errors] - Structured errors with stable codes for API responses and
// input validation helpers.
//
// [observability] - Optional instrumentation hooks for pipeline and
// cache events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//
// [diagram]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/diagram
// [layout]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/layout
// [geom]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/geom
// [render]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/cache
// [store]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/store
// [errors]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/errors
// [observability]: https://pkg.go.dev/github.com/dihm/leveldiagram/pkg/observability
package pkg
