// Package pagevisuals provides a fluent API for pulling a bounded,
// size-ranked set of visuals out of a PDF: the largest embedded raster
// images and rendered clips of the densest vector graphics.
//
// Basic usage:
//
//	res, warnings, err := pagevisuals.Open("document.pdf").Extract(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pagevisuals.FormatWarnings(warnings))
//	}
//
// With options:
//
//	res, _, err := pagevisuals.Open("report.pdf").
//	    MaxImagesPerPage(4).
//	    MaxTotalImages(10).
//	    RenderScale(3).
//	    Extract(ctx)
//
// The reader, extract and textexcerpt packages are available for lower
// level use.
package pagevisuals

// Open returns an Extractor for the PDF file at filename. The file is read
// on the first terminal operation.
//
// Example:
//
//	n, err := pagevisuals.Open("document.pdf").PageCount()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns an Extractor for a PDF already in memory.
func FromBytes(data []byte) *Extractor {
	return &Extractor{
		data:    data,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pagevisuals.Must(pagevisuals.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustExtract is like Must for calls that also return warnings, which are
// discarded.
//
// Example:
//
//	res := pagevisuals.MustExtract(pagevisuals.Open("document.pdf").Extract(ctx))
func MustExtract[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
