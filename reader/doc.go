// Package reader opens PDF documents held in memory and reports what each
// page paints: embedded raster images, vector drawings, and a rasterized
// view of any page region.
//
// # Opening Documents
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n, err := r.PageCount()
//
// Use [NewReader] for bytes already in memory. Broken cross-reference data
// is rebuilt by scanning the file for object headers; [Reader.Repaired]
// reports when that happened.
//
// # Page Content
//
// Page indices are 0-based. Rectangles are in points, measured from the
// top-left corner of the page's crop box with y growing downward.
//
//   - EmbeddedImages(page) - image XObjects and inline images
//   - VectorDrawings(page) - one rectangle per painted path
//   - Rasterize(page, clip, sx, sy, alpha) - PNG of a page region
//
// JPEG images are returned as stored. Raw samples are converted to PNG.
// Other codecs (JPX, JBIG2) are returned undecoded with
// [model.EncodingOther].
//
// # Object Resolution
//
//   - GetObject(objNum) - load object by number
//   - Resolve(obj) - resolve if indirect, otherwise return as-is
//
// Objects and page content are cached for the life of the Reader. All
// exported methods are safe for concurrent use.
package reader
