package column

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/barstack/pkg/errors"
)

// PlotOptions configure the visual surface around the computed geometry.
// Everything numeric about the chart itself is already decided by the time
// a plot is built.
type PlotOptions struct {
	Title        string
	XLabel       string
	YLabel       string
	SeriesLabels []string // legend text per series; defaults to "series N"
}

// BuildPlot assembles a plot.Plot from the geometry: one colored plotter
// per series, constant x ticks from the row labels, and the x window from
// the geometry's inset calculation. The y-domain is derived by the axis
// subsystem from the plotters' data ranges.
func BuildPlot(g *Geometry, opts PlotOptions) (*plot.Plot, error) {
	p := plot.New()

	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	p.Title.TextStyle.Color = color.Gray{128}
	p.X.Color = color.Gray{128}
	p.Y.Color = color.Gray{128}
	p.X.Label.TextStyle.Color = color.Gray{128}
	p.Y.Label.TextStyle.Color = color.Gray{128}
	p.X.Tick.Color = color.Gray{128}
	p.Y.Tick.Color = color.Gray{128}
	p.X.Tick.Label.Color = color.Gray{128}
	p.Y.Tick.Label.Color = color.Gray{128}
	p.Legend.TextStyle.Color = color.Gray{128}

	xTicks := make([]plot.Tick, len(g.Ticks))
	for i, t := range g.Ticks {
		xTicks[i] = plot.Tick{Value: t.Value, Label: t.Label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Min, p.X.Max = g.XMin, g.XMax

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.Padding = 1 * vg.Millimeter
	p.BackgroundColor = color.Transparent

	colors, err := seriesColors(g.SeriesCount)
	if err != nil {
		return nil, err
	}

	for s := 0; s < g.SeriesCount; s++ {
		sc := newSeriesColumns(g, s, colors[s])
		p.Add(sc)
		if g.SeriesCount > 1 || len(opts.SeriesLabels) > 0 {
			p.Legend.Add(seriesLabel(opts.SeriesLabels, s), sc)
		}
	}

	return p, nil
}

// seriesColors picks a qualitative brewer palette sized for the series
// count, cycling when there are more series than palette entries.
func seriesColors(n int) ([]color.Color, error) {
	if n <= 0 {
		return nil, nil
	}
	size := n
	if size < 3 {
		size = 3
	}
	if size > 12 {
		size = 12
	}
	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "palette for %d series", n)
	}
	base := palette.Colors()
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = base[i%len(base)]
	}
	return colors, nil
}

func seriesLabel(labels []string, s int) string {
	if s < len(labels) && labels[s] != "" {
		return labels[s]
	}
	return fmt.Sprintf("series %d", s+1)
}

// seriesColumns draws one series' bars and whiskers. It implements
// plot.Plotter, plot.DataRanger, and plot.Thumbnailer so the axis layer
// can derive the y-domain from the emitted geometry and the legend can
// show a color swatch.
type seriesColumns struct {
	geo    *Geometry
	series int
	color  color.Color
	whisk  draw.LineStyle
}

func newSeriesColumns(g *Geometry, s int, c color.Color) *seriesColumns {
	return &seriesColumns{
		geo:    g,
		series: s,
		color:  c,
		whisk: draw.LineStyle{
			Color: color.Gray{128},
			Width: 0.2 * vg.Millimeter,
		},
	}
}

// Plot draws the series' bars as filled rectangles and its whiskers as
// vertical lines with horizontal caps.
func (sc *seriesColumns) Plot(cv draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&cv)

	for _, b := range sc.geo.Bars {
		if b.Series != sc.series {
			continue
		}
		left := trX(b.Left())
		right := trX(b.Right())
		base := trY(b.YBase)
		top := trY(b.Top())

		poly := []vg.Point{
			{X: left, Y: base},
			{X: right, Y: base},
			{X: right, Y: top},
			{X: left, Y: top},
		}
		cv.FillPolygon(sc.color, cv.ClipPolygonXY(poly))
	}

	for _, w := range sc.geo.Whiskers {
		if w.Series != sc.series {
			continue
		}
		x := trX(whiskerCenter(sc.geo, w))
		low := trY(w.YLow)
		high := trY(w.YHigh)
		capHalf := trX(w.CapHalfWidth) - trX(0)

		cv.StrokeLine2(sc.whisk, x, low, x, high)
		cv.StrokeLine2(sc.whisk, x-capHalf, low, x+capHalf, low)
		cv.StrokeLine2(sc.whisk, x-capHalf, high, x+capHalf, high)
	}
}

// whiskerCenter finds the x anchor of the bar the whisker belongs to.
func whiskerCenter(g *Geometry, w Whisker) float64 {
	for _, b := range g.Bars {
		if b.Row == w.Row && b.Series == w.Series {
			return b.XCenter
		}
	}
	return float64(w.Row)
}

// DataRange reports the full geometry extent so the axis subsystem derives
// the y-domain from the emitted bars and whiskers. Zero is always included
// so bars stay visually anchored.
func (sc *seriesColumns) DataRange() (xmin, xmax, ymin, ymax float64) {
	ymin, ymax = sc.geo.YRange()
	return sc.geo.XMin, sc.geo.XMax, ymin, ymax
}

// Thumbnail draws the legend swatch for the series.
func (sc *seriesColumns) Thumbnail(cv *draw.Canvas) {
	pts := []vg.Point{
		{X: cv.Min.X, Y: cv.Min.Y},
		{X: cv.Max.X, Y: cv.Min.Y},
		{X: cv.Max.X, Y: cv.Max.Y},
		{X: cv.Min.X, Y: cv.Max.Y},
	}
	cv.FillPolygon(sc.color, pts)
}

var (
	_ plot.Plotter     = (*seriesColumns)(nil)
	_ plot.DataRanger  = (*seriesColumns)(nil)
	_ plot.Thumbnailer = (*seriesColumns)(nil)
)
