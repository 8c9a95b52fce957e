package sink

import (
	"github.com/matzehuels/barstack/pkg/render/column"
)

// RenderPNG renders the geometry as a PNG image. It shares options with
// [RenderSVG]; size is in points and rasterized at the canvas default DPI.
func RenderPNG(g *column.Geometry, opts ...Option) ([]byte, error) {
	return renderImage(g, "png", opts...)
}
