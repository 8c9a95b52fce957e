// Package column computes the data-space geometry of a column chart: bar
// rectangles, stacked segment offsets, error whisker extents, and the x-axis
// window, from normalized rows produced by pkg/series.
//
// The package decides where every bar, stack segment, and whisker sits and
// what its numeric extent is. It never draws anything: the resulting
// [Geometry] is plain data handed to the plotting layer (plot.go and the
// sink subpackage) or serialized for external tools.
//
// All coordinates are in data space. A row's canonical x position is its
// index; bar widths are fractions of one row slot.
package column
