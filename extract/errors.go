package extract

import (
	"errors"
	"fmt"

	"github.com/tsawler/pagevisuals/model"
)

// ErrPageOutOfRange is wrapped by a RasterizationError for a region whose
// page does not exist in the document.
var ErrPageOutOfRange = errors.New("page index out of range")

// InputError means the document could not be read at all. It is the only
// error Run returns.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("unreadable document: %v", e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// DecodeError is a single image, or a page's image or drawing list, that
// could not be read.
type DecodeError struct {
	Page int
	ID   string // empty when a whole page listing failed
	Err  error
}

func (e *DecodeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("page %d: %v", e.Page+1, e.Err)
	}
	return fmt.Sprintf("page %d image %s: %v", e.Page+1, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RasterizationError is a region that could not be rendered.
type RasterizationError struct {
	Page int
	Rect model.Rect
	Err  error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("page %d region [%.1f %.1f %.1f %.1f]: %v",
		e.Page+1, e.Rect.X0, e.Rect.Y0, e.Rect.X1, e.Rect.Y1, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// CodecError is a failed resize or re-encode. The original bytes are kept.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }
