// Package graphicsstate interprets content streams far enough to find what a
// page paints.
//
// [GraphicsState] tracks the CTM, line width and fill/stroke colours through
// the q/Q stack. [Collector] runs a content stream on top of it and records
// two things:
//   - every painted path as a [Drawing]: its flattened subpaths in default
//     user space, their bounding rectangle, paint flags and colours
//   - every placed image as an [ImagePlacement]: the image XObject or inline
//     image and the CTM that maps the unit square onto the page
//
// Form XObjects are entered recursively with their /Matrix applied:
//
//	c := graphicsstate.NewCollector(resolver)
//	if err := c.Run(content, resources); err != nil {
//		// c.Drawings and c.Images hold what was found before the error
//	}
//
// Text operators are ignored; glyphs are neither drawings nor images.
package graphicsstate
