// Package pipeline provides the core chart pipeline for barstack.
//
// This package implements the complete load → build → render pipeline used
// by the CLI and the server. By centralizing this logic, we ensure
// consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read heterogeneous rows from a JSON or CSV source
//  2. Build: Compute the column geometry (bars, whiskers, axis window)
//  3. Render: Generate output in various formats (SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    RowsPath:  "sales.json",
//	    ChartPath: "sales.toml",
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barstack/pkg/cache"
	"github.com/matzehuels/barstack/pkg/chartfile"
	"github.com/matzehuels/barstack/pkg/errors"
	"github.com/matzehuels/barstack/pkg/render/column"
	"github.com/matzehuels/barstack/pkg/render/column/sink"
	"github.com/matzehuels/barstack/pkg/series"
)

// Defaults shared by CLI and server entry points.
const (
	// DefaultWidth is the default canvas width in points.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in points.
	DefaultHeight = 600.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, json)", format)
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

// Options contains all configuration for the chart pipeline.
type Options struct {
	// Load options. Rows takes precedence over RowsPath when both are set
	// (the server passes decoded rows directly).
	RowsPath string
	Rows     []any

	// Chart definition. Definition takes precedence over ChartPath.
	// When neither is set, LabelKey and ValueKeys must be.
	ChartPath  string
	Definition *chartfile.Definition

	// Selector overrides for flag-driven usage without a definition file.
	LabelKey  string
	ValueKeys []string
	ErrorKeys []string

	// Geometry overrides. Zero values defer to the definition and then to
	// the engine defaults.
	Mode        string
	BarWidth    float64
	ClusterGap  float64
	Inset       float64
	WhiskerSize float64

	// Render options.
	Formats      []string
	Title        string
	XLabel       string
	YLabel       string
	SeriesLabels []string
	Width        float64
	Height       float64

	// Refresh bypasses the cache for this run.
	Refresh bool

	// Logger for stage progress. Defaults to the runner's logger.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent - calling it multiple times
// has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if len(o.Rows) == 0 && o.RowsPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "rows or rows path is required")
	}
	if o.Definition == nil && o.ChartPath == "" && o.LabelKey == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "chart definition or label key is required")
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	o.validated = true
	return nil
}

// resolveDefinition loads the chart definition when only a path was given
// and merges flag-driven selector overrides into it.
func (o *Options) resolveDefinition() (*chartfile.Definition, error) {
	def := o.Definition
	if def == nil && o.ChartPath != "" {
		loaded, err := chartfile.Load(o.ChartPath)
		if err != nil {
			return nil, err
		}
		def = loaded
	}
	if def == nil {
		def = &chartfile.Definition{}
	}

	if o.LabelKey != "" {
		def.Label = selectorValue(o.LabelKey)
	}
	if len(o.ValueKeys) > 0 {
		def.Values = selectorValues(o.ValueKeys)
	}
	if len(o.ErrorKeys) > 0 {
		def.Errors = selectorValues(o.ErrorKeys)
	}
	if o.Mode != "" {
		def.Mode = o.Mode
	}
	if o.Title != "" {
		def.Title = o.Title
	}
	if len(o.SeriesLabels) > 0 {
		def.SeriesLabels = o.SeriesLabels
	}
	return def, nil
}

// geometryOptions merges the definition's style section with any direct
// overrides into the engine options.
func (o *Options) geometryOptions(def *chartfile.Definition) column.Options {
	opts := def.Options()
	if o.Mode != "" {
		opts.Mode = series.Mode(o.Mode)
	}
	if o.BarWidth != 0 {
		opts.BarWidth = o.BarWidth
	}
	if o.ClusterGap != 0 {
		opts.ClusterGap = o.ClusterGap
	}
	if o.Inset != 0 {
		opts.Inset = o.Inset
	}
	if o.WhiskerSize != 0 {
		opts.WhiskerSize = o.WhiskerSize
	}
	return opts
}

// fillRenderDefaults copies display settings from the definition into any
// unset render options, so flags win over the definition file.
func (o *Options) fillRenderDefaults(def *chartfile.Definition) {
	if o.Title == "" {
		o.Title = def.Title
	}
	if len(o.SeriesLabels) == 0 {
		o.SeriesLabels = def.SeriesLabels
	}
	if o.XLabel == "" {
		o.XLabel = def.Output.XLabel
	}
	if o.YLabel == "" {
		o.YLabel = def.Output.YLabel
	}
	if o.Width == 0 {
		o.Width = def.Output.Width
	}
	if o.Height == 0 {
		o.Height = def.Output.Height
	}
}

// ArtifactKeyOpts builds the cache key options for a rendered artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:       format,
		Width:        o.Width,
		Height:       o.Height,
		Title:        o.Title,
		SeriesLabels: o.SeriesLabels,
	}
}

// sinkOptions converts the render options into image sink options.
func (o *Options) sinkOptions() []sink.Option {
	w, h := o.Width, o.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	return []sink.Option{
		sink.WithSize(w, h),
		sink.WithTitle(o.Title),
		sink.WithAxisLabels(o.XLabel, o.YLabel),
		sink.WithSeriesLabels(o.SeriesLabels),
	}
}

// selectorValue turns a flag string into a selector value. All-digit
// strings address slice rows by column position; everything else is a
// field name.
func selectorValue(s string) any {
	if s == "" {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return n
}

func selectorValues(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = selectorValue(s)
	}
	return out
}
