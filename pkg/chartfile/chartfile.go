// Package chartfile loads TOML chart definitions: which row fields feed the
// chart, the display mode, and the numeric style values. A definition plus
// a row file is everything a render needs.
//
// Example definition:
//
//	title = "Quarterly revenue"
//	mode = "clustered"
//	label = "region"
//	values = ["q1", "q2"]
//	errors = ["q1_err", "q2_err"]
//	series_labels = ["Q1", "Q2"]
//
//	[style]
//	bar_width = 0.8
//	cluster_gap = 0.05
//
//	[output]
//	width = 800
//	height = 600
//	y_label = "USD"
//
// Value and error selectors may be field names (map rows) or integer
// indexes (slice rows, e.g. headerless CSV).
package chartfile

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/barstack/pkg/errors"
	"github.com/matzehuels/barstack/pkg/render/column"
	"github.com/matzehuels/barstack/pkg/series"
)

// Definition is a parsed chart definition. TOML is the file format; the
// JSON tags serve the render API, which accepts the same shape inline.
type Definition struct {
	Title        string   `toml:"title" json:"title,omitempty"`
	Mode         string   `toml:"mode" json:"mode,omitempty"`
	Label        any      `toml:"label" json:"label,omitempty"`
	Values       []any    `toml:"values" json:"values,omitempty"`
	Errors       []any    `toml:"errors" json:"errors,omitempty"`
	SeriesLabels []string `toml:"series_labels" json:"series_labels,omitempty"`

	Style  StyleSection  `toml:"style" json:"style,omitempty"`
	Output OutputSection `toml:"output" json:"output,omitempty"`
}

// StyleSection holds the numeric style knobs. Zero values take defaults.
type StyleSection struct {
	BarWidth    float64 `toml:"bar_width" json:"bar_width,omitempty"`
	ClusterGap  float64 `toml:"cluster_gap" json:"cluster_gap,omitempty"`
	Inset       float64 `toml:"inset" json:"inset,omitempty"`
	WhiskerSize float64 `toml:"whisker_size" json:"whisker_size,omitempty"`
}

// OutputSection holds canvas and labeling settings for image sinks.
type OutputSection struct {
	Width  float64 `toml:"width" json:"width,omitempty"`
	Height float64 `toml:"height" json:"height,omitempty"`
	XLabel string  `toml:"x_label" json:"x_label,omitempty"`
	YLabel string  `toml:"y_label" json:"y_label,omitempty"`
}

// Load reads and parses a chart definition from path.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "chart definition %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a chart definition from r.
func Parse(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read chart definition")
	}
	var def Definition
	if err := toml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart definition")
	}
	return &def, nil
}

// Selectors converts the definition's label/values/errors entries into the
// selector set consumed by the geometry builder.
func (d *Definition) Selectors() (series.Selectors, error) {
	var sel series.Selectors

	if d.Label == nil {
		return sel, errors.New(errors.ErrCodeInvalidConfig, "chart definition has no label selector")
	}
	label, err := series.ParseSelector(d.Label)
	if err != nil {
		return sel, err
	}
	values, err := series.ParseSelectors(d.Values)
	if err != nil {
		return sel, err
	}
	errKeys, err := series.ParseSelectors(d.Errors)
	if err != nil {
		return sel, err
	}

	sel.Label = label
	sel.Values = values
	sel.Errors = errKeys
	return sel, nil
}

// Options converts the definition's mode and style section into geometry
// options. Validation and defaulting happen in the geometry builder.
func (d *Definition) Options() column.Options {
	return column.Options{
		Mode:        series.Mode(d.Mode),
		BarWidth:    d.Style.BarWidth,
		ClusterGap:  d.Style.ClusterGap,
		Inset:       d.Style.Inset,
		WhiskerSize: d.Style.WhiskerSize,
	}
}
