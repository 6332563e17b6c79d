package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dihm/leveldiagram/pkg/pipeline"
)

// renderCommand creates the render command for generating diagram artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [diagram.json|diagram.toml]",
		Short: "Render a level diagram to SVG, PNG, PDF, JSON, or DOT",
		Long: `Render a level diagram to one or more output formats.

The render command computes the layout and produces the requested
artifacts in one step. Layouts and artifacts are cached locally so
repeated renders of an unchanged diagram are fast.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.RenderScale, "render-scale", opts.RenderScale, "pixels per axis unit in rendered output")
	cmd.Flags().StringVar(&opts.Background, "background", opts.Background, "background color (default: transparent)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runRender loads the diagram, executes the pipeline, and writes every
// requested artifact to disk.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	logger := loggerFromContext(ctx)

	d, err := loadDiagram(input, &opts)
	if err != nil {
		return err
	}
	logger.Debug("loaded diagram", "input", input, "levels", d.LevelCount())

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = logger

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %s", strings.Join(opts.Formats, ", ")))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Render complete")
	for _, format := range opts.Formats {
		path := artifactPath(output, input, format, len(opts.Formats))
		out, err := openOutput(path)
		if err != nil {
			return err
		}
		if _, err := out.Write(result.Artifacts[format]); err != nil {
			out.Close()
			return fmt.Errorf("write output %s: %w", path, err)
		}
		out.Close()
		printFile(path)
	}
	printStats(result.Stats.LevelCount, result.Stats.TransitionCount,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	for _, w := range result.Geometry.Warnings {
		printWarning("%s", w.Message)
	}

	return nil
}

// artifactPath derives the output path for one format. A single format
// goes straight to output (or <input>.<format> when unset); multiple
// formats share a base path and differ only in extension.
func artifactPath(output, input, format string, formatCount int) string {
	if formatCount == 1 && output != "" {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else if ext := filepath.Ext(base); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "." + format
}
