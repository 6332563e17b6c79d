package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dihm/leveldiagram/pkg/layout"
	"github.com/dihm/leveldiagram/pkg/pipeline"
)

// layoutCommand creates the layout command for computing diagram geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|diagram.toml]",
		Short: "Compute diagram geometry from a level diagram",
		Long: `Compute diagram geometry from a level diagram.

The layout command takes a diagram file (JSON or TOML) and solves level
positions, transition paths, and label placements. The output is a
geometry JSON file that can be rendered to SVG/PNG/PDF using 'render'.

TOML files may embed layout hints; explicit flags override them.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.geometry.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the diagram, computes the geometry, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
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

	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Solved %d levels", result.Stats.LevelCount))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".geometry.json"
	}

	data, err := layout.MarshalGeometry(result.Geometry)
	if err != nil {
		return fmt.Errorf("serialize geometry: %w", err)
	}
	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.LevelCount, result.Stats.TransitionCount, result.CacheInfo.LayoutHit)
	for _, w := range result.Geometry.Warnings {
		printWarning("%s", w.Message)
	}
	printNewline()
	printNextStep("Render", "leveldiagram render "+input)

	return nil
}
