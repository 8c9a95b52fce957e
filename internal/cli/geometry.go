package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barstack/pkg/render/column/sink"
)

// geometryCommand creates the geometry command for inspecting computed
// bar geometry without rendering an image.
func (c *CLI) geometryCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		valuesStr string
		errorsStr string
	)
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "geometry [rows-file]",
		Short: "Compute bar geometry from a rows file",
		Long: `Compute bar geometry from a rows file.

The geometry command runs the normalization and geometry stages only and
writes the result as JSON: bars, whiskers, ticks, and the axis window. The
output is the same document 'render -f json' embeds, and is what a plotting
frontend consumes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.values = parseList(valuesStr)
			opts.errorKeys = parseList(errorsStr)
			return c.runGeometry(cmd.Context(), args[0], &opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.geometry.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.chart, "chart", "c", "", "chart definition file (TOML)")
	cmd.Flags().StringVar(&opts.label, "label", "", "label field name or column index")
	cmd.Flags().StringVar(&valuesStr, "values", "", "value field names or column indexes (comma-separated)")
	cmd.Flags().StringVar(&errorsStr, "errors", "", "error field names or column indexes (comma-separated)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "display mode: basic (default), clustered, stacked, stacked100")
	cmd.Flags().Float64Var(&opts.barWidth, "bar-width", 0, "bar width in index units")
	cmd.Flags().Float64Var(&opts.clusterGap, "cluster-gap", 0, "gap between bars in a cluster")
	cmd.Flags().Float64Var(&opts.inset, "inset", 0, "axis padding in index units")
	cmd.Flags().Float64Var(&opts.whiskerSize, "whisker-size", 0, "whisker cap width relative to the bar")

	return cmd
}

// runGeometry loads the rows, computes the geometry, and writes JSON output.
func (c *CLI) runGeometry(ctx context.Context, input string, opts *renderOpts, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := pipelineOptions(input, opts)
	rows, err := runner.LoadRows(popts)
	if err != nil {
		return fmt.Errorf("load rows %s: %w", input, err)
	}

	geometry, cacheHit, err := runner.BuildWithCacheInfo(ctx, rows, popts)
	if err != nil {
		return fmt.Errorf("compute geometry: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := sink.RenderJSON(geometry)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".geometry.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Geometry complete")
	printFile(outputPath)
	printStats(len(rows), len(geometry.Bars), cacheHit)
	printKeyValue("Mode", string(geometry.Mode))
	ymin, ymax := geometry.YRange()
	printKeyValue("Window", fmt.Sprintf("x [%.2f, %.2f], y [%.2f, %.2f]", geometry.XMin, geometry.XMax, ymin, ymax))
	printNextStep("Render", "barstack render "+input)

	return nil
}
