// Package cache provides pluggable caching backends for layout and render
// results.
//
// A cache stores opaque bytes under string keys with optional expiration.
// Three backends are provided:
//
//   - [FileCache]: on-disk cache for CLI usage
//   - [RedisCache]: shared cache for the API service
//   - [NullCache]: no-op cache for tests and --no-cache runs
//
// Keys are built through a [Keyer] so that every layer (diagram hash,
// layout options, render format) contributes to the key and stale entries
// can never be served across option changes.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached layer. Layout and artifact entries derive from
// content hashes, so they never go stale; the TTLs just bound disk usage.
const (
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present; an absent key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the layout inputs that must invalidate a cached
// geometry when they change.
type LayoutKeyOpts struct {
	Scale                string  `json:"scale"`
	CollisionThreshold   float64 `json:"collision_threshold"`
	LabelSide            string  `json:"label_side"`
	LabelCollisionRadius float64 `json:"label_collision_radius"`
	ParallelSpacing      float64 `json:"parallel_spacing"`
}

// ArtifactKeyOpts are the render inputs that must invalidate a cached
// artifact when they change.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	RenderScale float64 `json:"render_scale"`
	Background  string  `json:"background"`
}

// Keyer builds cache keys for the pipeline's cached layers.
type Keyer interface {
	// DiagramKey identifies a diagram document by content hash.
	DiagramKey(diagramHash string) string

	// LayoutKey identifies a computed geometry for a diagram and a set of
	// layout options.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact for a geometry and a set
	// of render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds hierarchical keys of the form prefix:sha256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DiagramKey generates a key for diagram document caching.
func (k *DefaultKeyer) DiagramKey(diagramHash string) string {
	return hashKey("diagram", diagramHash)
}

// LayoutKey generates a key for layout geometry caching.
func (k *DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
