package extract

// Budget is a cap shared across pages. Per-page steps take a Budget and
// return the updated one, so pages must be processed in document order.
type Budget struct {
	Used int
	Max  int
}

// Remaining returns how many more items fit.
func (b Budget) Remaining() int {
	if b.Used >= b.Max {
		return 0
	}
	return b.Max - b.Used
}

// Exhausted reports whether the cap has been reached.
func (b Budget) Exhausted() bool { return b.Used >= b.Max }

// Take records n more items.
func (b Budget) Take(n int) Budget {
	b.Used += n
	return b
}

// SkipReason says why an item is missing from the result.
type SkipReason int

const (
	// SkipDuplicate is an image already seen on the same page.
	SkipDuplicate SkipReason = iota + 1
	// SkipTooSmall is an image below MinImageArea.
	SkipTooSmall
	// SkipPageCap is an image ranked below MaxImagesPerPage.
	SkipPageCap
	// SkipTotalCap is an image that qualified after MaxTotalImages was reached.
	SkipTotalCap
	// SkipDecode is an image that could not be normalized to PNG or JPEG,
	// or a page whose image or drawing list could not be read.
	SkipDecode
	// SkipRasterize is a region that could not be rendered.
	SkipRasterize
	// KeptOriginal is an image kept with its original bytes because
	// resizing failed. It is in the result.
	KeptOriginal
)

func (r SkipReason) String() string {
	switch r {
	case SkipDuplicate:
		return "duplicate"
	case SkipTooSmall:
		return "too small"
	case SkipPageCap:
		return "page cap"
	case SkipTotalCap:
		return "total cap"
	case SkipDecode:
		return "decode failed"
	case SkipRasterize:
		return "rasterize failed"
	case KeptOriginal:
		return "kept original"
	default:
		return "unknown"
	}
}

// Outcome records one item that was dropped, or kept in degraded form.
type Outcome struct {
	Page   int
	ID     string // image id; empty for regions and page listings
	Reason SkipReason
	Err    error // nil for cap and filter skips
}
