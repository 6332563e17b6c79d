// Package layout converts an energy level diagram into concrete 2-D
// geometry: a horizontal segment per level, a path per transition, and
// non-overlapping label anchors for both.
//
// One layout pass is a pure function from (diagram snapshot, config) to
// [Geometry]. The diagram is only read; the geometry is created fresh on
// every call and never mutated in place. Given identical input and
// configuration, the output is bit-for-bit reproducible.
//
// The pass runs three stages in order:
//
//  1. Level solver: energies map to y through the configured scale; levels
//     are bucketed into group columns and nudged into horizontal slots when
//     their heights would visually collide.
//  2. Transition router: each transition gets a path between attachment
//     points on its level segments, with parallel groups fanned apart and
//     self-transitions drawn as loops.
//  3. Label placer: level and transition labels get anchors chosen to avoid
//     sibling overlap via bounded local repair.
//
// Malformed diagrams (dangling references, non-positive widths, non-finite
// energies) abort the pass before any geometry exists. Layout degeneracies
// such as repair exhaustion are non-fatal and surface as [Warning] values
// on the result.
package layout

import "github.com/dihm/leveldiagram/pkg/diagram"

// Build computes the geometry for a diagram under the given configuration.
//
// The error return is reserved for configuration errors (the diagram fails
// validation); in that case no partial geometry is emitted. Every level and
// transition of a valid diagram appears in the result exactly once.
func Build(d *diagram.Diagram, cfg Config) (Geometry, error) {
	if err := d.Validate(); err != nil {
		return Geometry{}, err
	}
	cfg = cfg.withDefaults()

	segs := solveLevels(d, cfg)
	paths := routeTransitions(d, cfg, segs)
	levels, warnings := placeLevelLabels(d, cfg, segs)
	warnings = append(warnings, placeTransitionLabels(d, cfg, paths, levels)...)

	return Geometry{
		Levels:      levels,
		Transitions: paths,
		Warnings:    warnings,
	}, nil
}
