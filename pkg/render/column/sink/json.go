package sink

import (
	"encoding/json"

	"github.com/matzehuels/barstack/pkg/render/column"
	"github.com/matzehuels/barstack/pkg/series"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title        string
	seriesLabels []string
}

// WithJSONTitle records the chart title in the JSON output.
func WithJSONTitle(title string) JSONOption {
	return func(r *jsonRenderer) { r.title = title }
}

// WithJSONSeriesLabels records the per-series legend text in the JSON output.
func WithJSONSeriesLabels(labels []string) JSONOption {
	return func(r *jsonRenderer) { r.seriesLabels = labels }
}

type jsonOutput struct {
	Title        string                 `json:"title,omitempty"`
	Mode         series.Mode            `json:"mode"`
	SeriesCount  int                    `json:"series_count"`
	SeriesLabels []string               `json:"series_labels,omitempty"`
	XMin         float64                `json:"x_min"`
	XMax         float64                `json:"x_max"`
	BarWidth     float64                `json:"bar_width"`
	ClusterGap   float64                `json:"cluster_gap,omitempty"`
	Inset        float64                `json:"inset"`
	WhiskerSize  float64                `json:"whisker_size,omitempty"`
	Ticks        []column.Tick          `json:"ticks"`
	Rows         []series.NormalizedRow `json:"rows"`
	Bars         []column.Bar           `json:"bars"`
	Whiskers     []column.Whisker       `json:"whiskers,omitempty"`
}

// RenderJSON exports the geometry as a pretty-printed JSON document.
// This is the primary data interchange format for barstack, enabling:
//
//   - Integration with external drawing tools
//   - Caching computed geometry for fast re-rendering
//   - Round-trip rendering (re-import and render identically)
//
// RenderJSON returns an error only if JSON marshaling fails. It does not
// modify g and is safe to call concurrently.
func RenderJSON(g *column.Geometry, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Title:        r.title,
		Mode:         g.Mode,
		SeriesCount:  g.SeriesCount,
		SeriesLabels: r.seriesLabels,
		XMin:         g.XMin,
		XMax:         g.XMax,
		BarWidth:     g.BarWidth,
		ClusterGap:   g.ClusterGap,
		Inset:        g.Inset,
		WhiskerSize:  g.WhiskerSize,
		Ticks:        g.Ticks,
		Rows:         g.Rows,
		Bars:         g.Bars,
		Whiskers:     g.Whiskers,
	}

	return json.MarshalIndent(out, "", "  ")
}
