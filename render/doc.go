// Package render rasterizes a clip of a page from the paths and images a
// [graphicsstate.Collector] found on it.
//
// Paths are scan-converted with golang.org/x/image/vector and images are
// composited with bilinear affine transforms from golang.org/x/image/draw.
// Text is not drawn.
//
//	c, err := render.NewCanvas(cropBox, clip, 2, 2, false)
//	for _, d := range drawings {
//		c.DrawPath(d)
//	}
//	png.Encode(w, c.Image())
//
// Coordinates follow the rest of the module: clip rectangles are in points
// from the top-left corner of the page's visible box, while drawings and
// image transforms are in PDF default user space (y up).
package render
