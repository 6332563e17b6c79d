// Package cli implements the leveldiagram command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dihm/leveldiagram/pkg/buildinfo"
	"github.com/dihm/leveldiagram/pkg/cache"
	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/errors"
	"github.com/dihm/leveldiagram/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "leveldiagram"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "leveldiagram",
		Short:        "Leveldiagram lays out and renders atomic energy level diagrams",
		Long:         `Leveldiagram is a CLI tool for computing publication-quality layouts of atomic energy level diagrams: levels on an energy axis, driven and decay transitions between them, and collision-free labels.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Commands pull the logger back out with loggerFromContext.
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.levelsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/leveldiagram/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Diagram Loading
// =============================================================================

// loadDiagram reads a diagram from a JSON or TOML file, chosen by extension.
// TOML files may carry layout hints which are merged into opts where the
// corresponding option is still unset.
func loadDiagram(path string, opts *pipeline.Options) (*diagram.Diagram, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		d, hints, err := diagram.DecodeTOMLFile(path)
		if err != nil {
			return nil, fmt.Errorf("load diagram %s: %w", path, err)
		}
		applyHints(opts, hints)
		return d, nil
	default:
		d, err := diagram.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load diagram %s: %w", path, err)
		}
		return d, nil
	}
}

// applyHints fills unset layout options from TOML layout hints.
// Explicit command-line flags always win.
func applyHints(opts *pipeline.Options, hints diagram.LayoutHints) {
	if opts.Scale == "" && hints.Scale != "" {
		opts.Scale = hints.Scale
	}
	if opts.CollisionThreshold == 0 && hints.CollisionThreshold != 0 {
		opts.CollisionThreshold = hints.CollisionThreshold
	}
	if opts.LabelSide == "" && hints.LabelSide != "" {
		opts.LabelSide = hints.LabelSide
	}
	if opts.LabelCollisionRadius == 0 && hints.LabelCollisionRadius != 0 {
		opts.LabelCollisionRadius = hints.LabelCollisionRadius
	}
	if opts.ParallelSpacing == 0 && hints.ParallelSpacing != 0 {
		opts.ParallelSpacing = hints.ParallelSpacing
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if err := errors.ValidateOutputPath(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// addLayoutFlags registers the layout tuning flags shared by layout and render.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Scale, "scale", opts.Scale, "energy axis scale: linear (default), log")
	cmd.Flags().StringVar(&opts.LabelSide, "label-side", opts.LabelSide, "level label side: left (default), right, top, bottom")
	cmd.Flags().Float64Var(&opts.CollisionThreshold, "collision-threshold", opts.CollisionThreshold, "vertical distance below which same-group levels are nudged into separate slots")
	cmd.Flags().Float64Var(&opts.LabelCollisionRadius, "label-collision-radius", opts.LabelCollisionRadius, "distance below which labels are nudged apart")
	cmd.Flags().Float64Var(&opts.ParallelSpacing, "parallel-spacing", opts.ParallelSpacing, "horizontal spacing between parallel transitions")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached result exists")
}
