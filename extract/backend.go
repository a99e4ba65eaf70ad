package extract

import "github.com/tsawler/pagevisuals/model"

// Backend is a paged document. Page indices are 0-based and rectangles are
// in points from the page's top-left corner.
type Backend interface {
	PageCount() (int, error)

	// EmbeddedImages lists the page's images in discovery order. The same
	// image may appear more than once.
	EmbeddedImages(page int) ([]model.ImageCandidate, error)

	// VectorDrawings lists one rectangle per painted drawing primitive.
	VectorDrawings(page int) ([]model.VectorDrawing, error)

	// Rasterize renders rect at sx by sy pixels per point and returns PNG
	// bytes. alpha selects a transparent background.
	Rasterize(page int, rect model.Rect, sx, sy float64, alpha bool) ([]byte, error)
}

// Codec inspects and converts raster image bytes.
type Codec interface {
	DecodeRaster(data []byte) (width, height int, format string, err error)

	// Resize scales data to exactly width x height. The result is PNG.
	Resize(data []byte, width, height int) ([]byte, error)

	Reencode(data []byte, target model.Encoding, quality int) ([]byte, error)
}
