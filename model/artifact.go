package model

import "fmt"

// Encoding is the byte format of an embedded image as stored in the document.
type Encoding int

const (
	// EncodingOther covers everything that is neither PNG nor JPEG and must be
	// normalized before it can be shipped.
	EncodingOther Encoding = iota
	EncodingPNG
	EncodingJPEG
)

// String returns the lower-case short name of the encoding
func (e Encoding) String() string {
	switch e {
	case EncodingPNG:
		return "png"
	case EncodingJPEG:
		return "jpeg"
	default:
		return "other"
	}
}

// MIME returns the media type for PNG and JPEG, and "" otherwise.
func (e Encoding) MIME() string {
	switch e {
	case EncodingPNG:
		return MIMEPNG
	case EncodingJPEG:
		return MIMEJPEG
	default:
		return ""
	}
}

// ImageCandidate is an embedded raster image as reported by a document
// backend. ID is opaque and unique within a page; the same image placed
// twice on a page is reported twice with the same ID.
type ImageCandidate struct {
	Page     int
	ID       string
	Width    int
	Height   int
	Data     []byte
	Encoding Encoding
}

// Area returns width x height in pixels.
func (c ImageCandidate) Area() int {
	if c.Width <= 0 || c.Height <= 0 {
		return 0
	}
	return c.Width * c.Height
}

// VectorDrawing is one painted drawing primitive on a page.
type VectorDrawing struct {
	Page int
	Rect Rect
}

// VectorRegion is a padded, merged cluster of drawing rectangles.
type VectorRegion struct {
	Page int
	Rect Rect
}

func (r VectorRegion) String() string {
	return fmt.Sprintf("page %d [%.1f %.1f %.1f %.1f]", r.Page+1, r.Rect.X0, r.Rect.Y0, r.Rect.X1, r.Rect.Y1)
}

// EmbeddedImage is a selected embedded image ready for shipping.
type EmbeddedImage struct {
	Page int  `json:"page"`
	Blob Blob `json:"blob"`
}

// VectorClip is a rasterized vector region; its blob is always PNG.
type VectorClip struct {
	Page int  `json:"page"`
	Rect Rect `json:"rect"`
	Blob Blob `json:"blob"`
}
