package column

import (
	"github.com/matzehuels/barstack/pkg/series"
)

// Bar is one rectangle (or stacked segment) in data-space coordinates.
// XCenter anchors the bar horizontally, XHalfWidth is half its width,
// and the vertical extent runs from YBase to YBase+YExtent.
type Bar struct {
	Row        int     `json:"row" bson:"row"`
	Series     int     `json:"series" bson:"series"`
	XCenter    float64 `json:"x" bson:"x"`
	XHalfWidth float64 `json:"half_width" bson:"half_width"`
	YBase      float64 `json:"y_base" bson:"y_base"`
	YExtent    float64 `json:"y_extent" bson:"y_extent"`
}

// Top returns the bar's far vertical edge.
func (b Bar) Top() float64 { return b.YBase + b.YExtent }

// Left returns the bar's left edge.
func (b Bar) Left() float64 { return b.XCenter - b.XHalfWidth }

// Right returns the bar's right edge.
func (b Bar) Right() float64 { return b.XCenter + b.XHalfWidth }

// Whisker is the error range drawn around one bar's value.
// CapHalfWidth is half the width of the horizontal caps.
type Whisker struct {
	Row          int     `json:"row" bson:"row"`
	Series       int     `json:"series" bson:"series"`
	YLow         float64 `json:"y_low" bson:"y_low"`
	YHigh        float64 `json:"y_high" bson:"y_high"`
	CapHalfWidth float64 `json:"cap_half_width" bson:"cap_half_width"`
}

// Tick is one x-axis tick: the row's canonical position and its label.
type Tick struct {
	Value float64 `json:"value" bson:"value"`
	Label string  `json:"label" bson:"label"`
}

// BuildBars computes the bar rectangles for the resolved rows.
//
// basic: one bar per row centered on the row index, full barWidth.
// clustered: seriesCount bars per row, each barWidth/seriesCount wide,
// laid out contiguously with clusterGap between neighbors and the whole
// cluster centered on the row index; series run left to right in value
// order. stacked/stacked100: one column per row, segments bottom-up in
// series order with each segment's base at the cumulative sum of the
// segments below it. Mixed-sign rows stack by straight cumulative sum,
// so negative segments extend downward from the running total.
//
// Zero rows produce an empty slice.
func BuildBars(rows []series.NormalizedRow, seriesCount int, mode series.Mode, barWidth, clusterGap float64) []Bar {
	if len(rows) == 0 || seriesCount == 0 {
		return nil
	}

	if mode == series.ModeClustered {
		return buildClustered(rows, seriesCount, barWidth, clusterGap)
	}
	if mode.Stacked() {
		return buildStacked(rows, seriesCount, barWidth)
	}

	// basic
	bars := make([]Bar, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, Bar{
			Row:        r.Index,
			Series:     0,
			XCenter:    float64(r.Index),
			XHalfWidth: barWidth / 2,
			YBase:      0,
			YExtent:    r.Values[0],
		})
	}
	return bars
}

func buildClustered(rows []series.NormalizedRow, seriesCount int, barWidth, clusterGap float64) []Bar {
	n := float64(seriesCount)
	width := barWidth / n
	span := barWidth + (n-1)*clusterGap

	bars := make([]Bar, 0, len(rows)*seriesCount)
	for _, r := range rows {
		left := float64(r.Index) - span/2
		for s := 0; s < seriesCount; s++ {
			center := left + float64(s)*(width+clusterGap) + width/2
			bars = append(bars, Bar{
				Row:        r.Index,
				Series:     s,
				XCenter:    center,
				XHalfWidth: width / 2,
				YBase:      0,
				YExtent:    r.Values[s],
			})
		}
	}
	return bars
}

func buildStacked(rows []series.NormalizedRow, seriesCount int, barWidth float64) []Bar {
	bars := make([]Bar, 0, len(rows)*seriesCount)
	for _, r := range rows {
		var base float64
		for s := 0; s < seriesCount; s++ {
			bars = append(bars, Bar{
				Row:        r.Index,
				Series:     s,
				XCenter:    float64(r.Index),
				XHalfWidth: barWidth / 2,
				YBase:      base,
				YExtent:    r.Values[s],
			})
			base += r.Values[s]
		}
	}
	return bars
}

// BuildWhiskers computes error whisker extents for the given bars.
//
// Whiskers are only meaningful in basic and clustered modes; for stacked
// modes the result is empty (not an error). A bar whose row carries no
// error value gets error 0 and still yields a degenerate whisker record,
// so callers can rely on one whisker per bar whenever error selectors are
// configured. With no error data at all the result is empty.
func BuildWhiskers(bars []Bar, rows []series.NormalizedRow, mode series.Mode, whiskerSize float64) []Whisker {
	if !mode.AllowsWhiskers() || !hasErrors(rows) {
		return nil
	}

	whiskers := make([]Whisker, 0, len(bars))
	for _, b := range bars {
		e := errorAt(rows, b.Row, b.Series)
		v := b.YBase + b.YExtent
		whiskers = append(whiskers, Whisker{
			Row:          b.Row,
			Series:       b.Series,
			YLow:         v - e,
			YHigh:        v + e,
			CapHalfWidth: whiskerSize * b.XHalfWidth,
		})
	}
	return whiskers
}

func hasErrors(rows []series.NormalizedRow) bool {
	for _, r := range rows {
		if len(r.Errors) > 0 {
			return true
		}
	}
	return false
}

func errorAt(rows []series.NormalizedRow, row, s int) float64 {
	if row < 0 || row >= len(rows) {
		return 0
	}
	errs := rows[row].Errors
	if s < 0 || s >= len(errs) {
		return 0
	}
	return errs[s]
}

// XRange computes the x-axis window for n rows. The effective inset is the
// larger of the configured inset and the bar half-width, so the outermost
// bars never touch the plot boundary even when the bars are wider than the
// inset.
func XRange(n int, inset, barWidth float64) (xmin, xmax float64) {
	margin := inset
	if half := barWidth / 2; half > margin {
		margin = half
	}
	return -margin, float64(n-1) + margin
}

// Ticks returns the (index, label) tick pairs for the rows, passed through
// verbatim to the axis layer. No thinning or rotation happens here.
func Ticks(rows []series.NormalizedRow) []Tick {
	ticks := make([]Tick, len(rows))
	for i, r := range rows {
		ticks[i] = Tick{Value: float64(r.Index), Label: r.Label}
	}
	return ticks
}
