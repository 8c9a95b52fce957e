package sink

import (
	"bytes"

	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/barstack/pkg/errors"
	"github.com/matzehuels/barstack/pkg/render/column"
)

const (
	defaultWidth  = 800 // default canvas width in points
	defaultHeight = 600 // default canvas height in points
)

// Option configures image rendering.
type Option func(*renderer)

type renderer struct {
	width, height float64
	title         string
	xLabel        string
	yLabel        string
	seriesLabels  []string
}

// WithSize sets the canvas size in points.
func WithSize(width, height float64) Option {
	return func(r *renderer) { r.width, r.height = width, height }
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(r *renderer) { r.title = title }
}

// WithAxisLabels sets the x and y axis labels.
func WithAxisLabels(x, y string) Option {
	return func(r *renderer) { r.xLabel, r.yLabel = x, y }
}

// WithSeriesLabels sets the per-series legend text, in series order.
func WithSeriesLabels(labels []string) Option {
	return func(r *renderer) { r.seriesLabels = labels }
}

// RenderSVG renders the geometry as an SVG document.
func RenderSVG(g *column.Geometry, opts ...Option) ([]byte, error) {
	return renderImage(g, "svg", opts...)
}

func newRenderer(opts ...Option) renderer {
	r := renderer{width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r renderer) plotOptions() column.PlotOptions {
	return column.PlotOptions{
		Title:        r.title,
		XLabel:       r.xLabel,
		YLabel:       r.yLabel,
		SeriesLabels: r.seriesLabels,
	}
}

func renderImage(g *column.Geometry, format string, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)

	p, err := column.BuildPlot(g, r.plotOptions())
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(vg.Points(r.width), vg.Points(r.height), format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", format)
	}
	return buf.Bytes(), nil
}
