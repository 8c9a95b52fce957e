package column

import (
	"github.com/matzehuels/barstack/pkg/series"
)

// Geometry is the complete computed chart: resolved rows, bar rectangles,
// whiskers, and the x-axis window. It is plain data - the plotting layer
// and the sinks consume it without further computation, and it serializes
// for caching, persistence, and external tools.
type Geometry struct {
	Mode        series.Mode            `json:"mode" bson:"mode"`
	SeriesCount int                    `json:"series_count" bson:"series_count"`
	Rows        []series.NormalizedRow `json:"rows" bson:"rows"`
	Bars        []Bar                  `json:"bars" bson:"bars"`
	Whiskers    []Whisker              `json:"whiskers,omitempty" bson:"whiskers,omitempty"`
	Ticks       []Tick                 `json:"ticks" bson:"ticks"`
	XMin        float64                `json:"x_min" bson:"x_min"`
	XMax        float64                `json:"x_max" bson:"x_max"`

	// Resolved style values, recorded for reproducible re-rendering.
	BarWidth    float64 `json:"bar_width" bson:"bar_width"`
	ClusterGap  float64 `json:"cluster_gap" bson:"cluster_gap"`
	Inset       float64 `json:"inset" bson:"inset"`
	WhiskerSize float64 `json:"whisker_size" bson:"whisker_size"`
}

// YRange returns the vertical extent covered by bars and whiskers.
// The axis layer derives the y-domain from this, always including zero so
// bars are anchored visually.
func (g *Geometry) YRange() (ymin, ymax float64) {
	for _, b := range g.Bars {
		ymin = min(ymin, b.YBase, b.Top())
		ymax = max(ymax, b.YBase, b.Top())
	}
	for _, w := range g.Whiskers {
		ymin = min(ymin, w.YLow)
		ymax = max(ymax, w.YHigh)
	}
	return ymin, ymax
}

// Build runs the full geometry computation: normalize rows, resolve the
// display mode, build bars and whiskers, and compute the axis window.
//
// All validation happens before any geometry is emitted; on fault no
// partial geometry is returned. The computation is pure and deterministic:
// identical inputs produce identical geometry.
func Build(rows []any, sel series.Selectors, opts Options) (*Geometry, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := sel.Validate(opts.Mode); err != nil {
		return nil, err
	}

	normalized, err := series.Normalize(rows, sel)
	if err != nil {
		return nil, err
	}

	count, resolved, err := series.ResolveSeries(normalized, opts.Mode)
	if err != nil {
		return nil, err
	}

	bars := BuildBars(resolved, count, opts.Mode, opts.BarWidth, opts.ClusterGap)
	whiskers := BuildWhiskers(bars, resolved, opts.Mode, opts.WhiskerSize)
	xmin, xmax := XRange(len(resolved), opts.Inset, opts.BarWidth)

	return &Geometry{
		Mode:        opts.Mode,
		SeriesCount: count,
		Rows:        resolved,
		Bars:        bars,
		Whiskers:    whiskers,
		Ticks:       Ticks(resolved),
		XMin:        xmin,
		XMax:        xmax,
		BarWidth:    opts.BarWidth,
		ClusterGap:  opts.ClusterGap,
		Inset:       opts.Inset,
		WhiskerSize: opts.WhiskerSize,
	}, nil
}
