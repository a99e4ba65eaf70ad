// Package codec decodes, resizes and re-encodes raster images, and turns raw
// PDF image samples into Go images.
//
// Decoding accepts PNG, JPEG, GIF, BMP, TIFF and WebP. Sizes are checked
// against [MaxSide] and [MaxPixels] before any pixels are allocated.
//
//	c := codec.New()
//	w, h, format, err := c.DecodeRaster(data)
//	small, err := c.Resize(data, w/2, h/2)             // PNG
//	jpg, err := c.Reencode(small, model.EncodingJPEG, 85)
//
// [Samples] converts unfiltered image XObject data (1 to 16 bits per
// component, gray, RGB, CMYK or indexed) to an image.Image.
package codec
