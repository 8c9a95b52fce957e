package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barstack/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	chart       string   // chart definition file (TOML)
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "svg", "png", "json"
	label       string   // label selector override
	values      []string // value selector overrides
	errorKeys   []string // error selector overrides
	mode        string   // display mode override
	title       string   // chart title override
	seriesNames []string // legend labels
	xLabel      string   // x axis label
	yLabel      string   // y axis label
	width       float64  // canvas width in points
	height      float64  // canvas height in points
	barWidth    float64  // bar width in index units
	clusterGap  float64  // gap between clustered bars
	inset       float64  // axis padding in index units
	whiskerSize float64  // whisker cap width relative to the bar
	noCache     bool     // disable the artifact cache
	refresh     bool     // bypass cached entries for this run
}

// renderCommand creates the render command for generating chart artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr, valuesStr, errorsStr, seriesStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [rows-file]",
		Short: "Render a column chart from a rows file",
		Long: `Render reads rows from a JSON or CSV file and generates chart output.

Selectors come from a TOML chart definition (--chart) or directly from
flags (--label, --values). Flags win over the definition file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			opts.values = parseList(valuesStr)
			opts.errorKeys = parseList(errorsStr)
			opts.seriesNames = parseList(seriesStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.chart, "chart", "c", "", "chart definition file (TOML)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVar(&opts.label, "label", "", "label field name or column index")
	cmd.Flags().StringVar(&valuesStr, "values", "", "value field names or column indexes (comma-separated)")
	cmd.Flags().StringVar(&errorsStr, "errors", "", "error field names or column indexes (comma-separated)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "display mode: basic (default), clustered, stacked, stacked100")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title")
	cmd.Flags().StringVar(&seriesStr, "series-labels", "", "legend labels (comma-separated)")
	cmd.Flags().StringVar(&opts.xLabel, "x-label", "", "x axis label")
	cmd.Flags().StringVar(&opts.yLabel, "y-label", "", "y axis label")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "canvas width in points")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "canvas height in points")
	cmd.Flags().Float64Var(&opts.barWidth, "bar-width", 0, "bar width in index units")
	cmd.Flags().Float64Var(&opts.clusterGap, "cluster-gap", 0, "gap between bars in a cluster")
	cmd.Flags().Float64Var(&opts.inset, "inset", 0, "axis padding in index units")
	cmd.Flags().Float64Var(&opts.whiskerSize, "whisker-size", 0, "whisker cap width relative to the bar")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runRender executes the pipeline and writes the artifacts to disk.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(cmd.Context()))
	result, err := runner.Execute(cmd.Context(), pipelineOptions(input, opts))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	base := basePath(opts.output, input)
	printSuccess("Rendered %s", input)
	printStats(result.Stats.RowCount, len(result.Geometry.Bars), result.CacheInfo.RenderHit)

	for _, format := range opts.formats {
		data, ok := result.Artifacts[format]
		if !ok {
			printWarning("no %s output produced", format)
			continue
		}
		path := artifactPath(base, opts.output, format, len(opts.formats))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	if opts.output == "" && len(opts.formats) == 1 && opts.formats[0] == pipeline.FormatSVG {
		printNextStep("Preview in the terminal", "barstack preview "+input)
	}
	return nil
}

// pipelineOptions converts command flags into pipeline options.
func pipelineOptions(input string, opts *renderOpts) pipeline.Options {
	return pipeline.Options{
		RowsPath:     input,
		ChartPath:    opts.chart,
		LabelKey:     opts.label,
		ValueKeys:    opts.values,
		ErrorKeys:    opts.errorKeys,
		Mode:         opts.mode,
		BarWidth:     opts.barWidth,
		ClusterGap:   opts.clusterGap,
		Inset:        opts.inset,
		WhiskerSize:  opts.whiskerSize,
		Formats:      opts.formats,
		Title:        opts.title,
		XLabel:       opts.xLabel,
		YLabel:       opts.yLabel,
		SeriesLabels: opts.seriesNames,
		Width:        opts.width,
		Height:       opts.height,
		Refresh:      opts.refresh,
	}
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, .json), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPath builds the output path for one format. A single requested
// format honors --output verbatim; multiple formats share the base path.
func artifactPath(base, output, format string, formatCount int) string {
	if formatCount == 1 && output != "" {
		return output
	}
	return base + "." + format
}
