// Package pipeline provides the core layout pipeline for leveldiagram.
//
// This package implements the complete load → layout → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a diagram document (JSON or TOML)
//  2. Layout: Compute level segments, transition paths, and label anchors
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Scale:   "linear",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, d, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Layout only
//	geometry, err := runner.ComputeLayout(ctx, d, opts)
//
//	// Render with existing geometry
//	artifacts, err := runner.Render(ctx, geometry, d, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dihm/leveldiagram/pkg/cache"
	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/errors"
	"github.com/dihm/leveldiagram/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the default energy-to-height mapping.
	DefaultScale = ScaleLinear

	// DefaultLabelSide is the default side for level labels.
	DefaultLabelSide = "left"

	// DefaultRenderScale is the default pixels-per-axis-unit factor for
	// raster and vector output.
	DefaultRenderScale = 120.0
)

// Scale constants for the energy axis mapping.
const (
	ScaleLinear = "linear"
	ScaleLog    = "log"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidScales is the set of supported energy scales.
var ValidScales = map[string]bool{
	ScaleLinear: true,
	ScaleLog:    true,
}

// ValidLabelSides is the set of supported level label sides.
var ValidLabelSides = map[string]bool{
	"left":   true,
	"right":  true,
	"top":    true,
	"bottom": true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Scale                string  `json:"scale,omitempty"`
	CollisionThreshold   float64 `json:"collision_threshold,omitempty"`
	LabelSide            string  `json:"label_side,omitempty"`
	LabelCollisionRadius float64 `json:"label_collision_radius,omitempty"`
	ParallelSpacing      float64 `json:"parallel_spacing,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	RenderScale float64  `json:"render_scale,omitempty"`
	Background  string   `json:"background,omitempty"`

	// Refresh bypasses cached layout and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Geometry is the computed layout.
	Geometry layout.Geometry

	// DiagramHash is the content hash of the input diagram.
	DiagramHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LevelCount      int
	TransitionCount int
	LayoutTime      time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether geometry came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateScale checks that a scale name is valid.
func ValidateScale(scale string) error {
	if !ValidScales[scale] {
		return errors.New(errors.ErrCodeInvalidScale,
			"invalid scale: %q (must be one of: linear, log)", scale)
	}
	return nil
}

// ValidateLabelSide checks that a label side is valid.
func ValidateLabelSide(side string) error {
	if !ValidLabelSides[side] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid label side: %q (must be one of: left, right, top, bottom)", side)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Scale == "" {
		o.Scale = DefaultScale
	}
	if o.LabelSide == "" {
		o.LabelSide = DefaultLabelSide
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateScale(o.Scale); err != nil {
		return err
	}
	return ValidateLabelSide(o.LabelSide)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.RenderScale == 0 {
		o.RenderScale = DefaultRenderScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutConfig builds the layout engine configuration for a diagram.
// The log scale needs the diagram's levels to pick its floor.
func (o *Options) LayoutConfig(d *diagram.Diagram) layout.Config {
	cfg := layout.Config{
		CollisionThreshold:   o.CollisionThreshold,
		LabelSide:            layout.Side(o.LabelSide),
		LabelCollisionRadius: o.LabelCollisionRadius,
		ParallelSpacing:      o.ParallelSpacing,
	}
	if o.Scale == ScaleLog {
		cfg.Scale = layout.AutoLogScale(d.Levels())
	}
	return cfg
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Scale:                o.Scale,
		CollisionThreshold:   o.CollisionThreshold,
		LabelSide:            o.LabelSide,
		LabelCollisionRadius: o.LabelCollisionRadius,
		ParallelSpacing:      o.ParallelSpacing,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		RenderScale: o.RenderScale,
		Background:  o.Background,
	}
}
