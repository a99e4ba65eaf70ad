package pagevisuals

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tsawler/pagevisuals/cache"
	"github.com/tsawler/pagevisuals/codec"
	"github.com/tsawler/pagevisuals/extract"
	"github.com/tsawler/pagevisuals/reader"
	"github.com/tsawler/pagevisuals/textexcerpt"
)

// Extractor provides a fluent interface for extracting visuals from a PDF.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	data     []byte

	reader *reader.Reader

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		data:     e.data,
		reader:   e.reader,
		options:  e.options.clone(),
		err:      e.err,
	}
}

// ensureReader reads the file and parses it if that has not happened yet.
func (e *Extractor) ensureReader() error {
	if e.reader != nil {
		return nil
	}
	if e.data == nil {
		if e.filename == "" {
			return &extract.InputError{Err: fmt.Errorf("no filename specified")}
		}
		data, err := os.ReadFile(e.filename)
		if err != nil {
			return &extract.InputError{Err: fmt.Errorf("failed to open file: %w", err)}
		}
		e.data = data
	}
	r, err := reader.NewReader(e.data)
	if err != nil {
		return &extract.InputError{Err: err}
	}
	e.reader = r
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// WithConfig replaces every extraction limit at once. An invalid config is
// reported by the terminal operation.
//
// Example:
//
//	cfg := extract.DefaultConfig()
//	cfg.MaxTotalImages = 5
//	res, _, err := pagevisuals.Open("doc.pdf").WithConfig(cfg).Extract(ctx)
func (e *Extractor) WithConfig(cfg extract.Config) *Extractor {
	newExt := e.clone()
	newExt.options.config = cfg
	return newExt
}

// MaxImagesPerPage sets how many embedded images are kept from one page.
func (e *Extractor) MaxImagesPerPage(n int) *Extractor {
	newExt := e.clone()
	newExt.options.config.MaxImagesPerPage = n
	return newExt
}

// MaxTotalImages sets how many embedded images are kept in total.
func (e *Extractor) MaxTotalImages(n int) *Extractor {
	newExt := e.clone()
	newExt.options.config.MaxTotalImages = n
	return newExt
}

// MinImageArea drops images with fewer than n pixels.
func (e *Extractor) MinImageArea(n int) *Extractor {
	newExt := e.clone()
	newExt.options.config.MinImageArea = n
	return newExt
}

// MaxImageDim downscales images whose longer side exceeds n pixels. Zero
// keeps images at their stored size.
func (e *Extractor) MaxImageDim(n int) *Extractor {
	newExt := e.clone()
	newExt.options.config.MaxImageDim = n
	return newExt
}

// MaxVectorRegionsPerPage sets how many vector regions are kept from one page.
func (e *Extractor) MaxVectorRegionsPerPage(n int) *Extractor {
	newExt := e.clone()
	newExt.options.config.MaxVectorRegionsPerPage = n
	return newExt
}

// MaxVectorRegionsTotal sets how many vector regions are kept in total.
func (e *Extractor) MaxVectorRegionsTotal(n int) *Extractor {
	newExt := e.clone()
	newExt.options.config.MaxVectorRegionsTotal = n
	return newExt
}

// MinVectorArea ignores drawings smaller than pt square points.
func (e *Extractor) MinVectorArea(pt float64) *Extractor {
	newExt := e.clone()
	newExt.options.config.MinVectorAreaPt = pt
	return newExt
}

// RegionPadding grows every drawing by pt points on each side before
// merging.
func (e *Extractor) RegionPadding(pt float64) *Extractor {
	newExt := e.clone()
	newExt.options.config.RegionPadPt = pt
	return newExt
}

// RenderScale sets the pixels per point used for vector clips.
//
// Example:
//
//	res, _, err := pagevisuals.Open("doc.pdf").RenderScale(3).Extract(ctx)
func (e *Extractor) RenderScale(s float64) *Extractor {
	newExt := e.clone()
	newExt.options.config.VectorRenderScale = s
	return newExt
}

// RenderWorkers renders up to n regions at once.
func (e *Extractor) RenderWorkers(n int) *Extractor {
	newExt := e.clone()
	newExt.options.config.RenderWorkers = n
	return newExt
}

// WithLogger sends progress and skip reports to l.
func (e *Extractor) WithLogger(l *slog.Logger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// WithCache stores results in c and reuses them for the same document and
// limits.
func (e *Extractor) WithCache(c *cache.Cache) *Extractor {
	newExt := e.clone()
	newExt.options.cache = c
	return newExt
}

// Config returns the extraction limits currently configured.
func (e *Extractor) Config() extract.Config {
	return e.options.config
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Extract selects embedded images and vector regions and renders the
// regions. Items that fail are left out and reported as warnings.
//
// Example:
//
//	res, warnings, err := pagevisuals.Open("document.pdf").Extract(ctx)
//	for _, img := range res.Images {
//	    fmt.Println(img.Page+1, img.Blob.MIME)
//	}
func (e *Extractor) Extract(ctx context.Context) (*extract.Result, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	cfg := e.options.config
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := e.ensureReader(); err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	key := ""
	if c := e.options.cache; c != nil {
		key = cache.Key(e.data, cfg)
		res, ok, err := c.Get(ctx, key)
		if err != nil {
			warnings = append(warnings, Warning{Page: -1, Message: "cache lookup failed", Err: err})
		} else if ok {
			e.options.logger.Debug("extract: cache hit", "key", key)
			return res, nil, nil
		}
	}

	engine := extract.New(e.reader, codec.New(), cfg).WithLogger(e.options.logger)
	res, err := engine.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, e.documentWarnings(res.PageCount)...)
	warnings = append(warnings, outcomeWarnings(res.Outcomes)...)

	if c := e.options.cache; c != nil {
		if err := c.Put(ctx, key, res); err != nil {
			warnings = append(warnings, Warning{Page: -1, Message: "cache store failed", Err: err})
		}
	}
	return res, warnings, nil
}

// PageCount returns the number of pages in the document.
//
// Example:
//
//	count, err := pagevisuals.Open("document.pdf").PageCount()
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureReader(); err != nil {
		return 0, err
	}
	return e.reader.PageCount()
}

// TextExcerpt returns up to maxChars characters of page text, each page
// introduced by a "--- Page N ---" marker.
//
// Example:
//
//	excerpt, err := pagevisuals.Open("document.pdf").TextExcerpt(textexcerpt.DefaultMaxChars)
func (e *Extractor) TextExcerpt(maxChars int) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	if err := e.ensureReader(); err != nil {
		return "", err
	}
	return textexcerpt.FromBytes(e.data, maxChars)
}

// ============================================================================
// Internal helpers
// ============================================================================

// documentWarnings reports repaired cross-reference data and content streams
// that stopped parsing early.
func (e *Extractor) documentWarnings(pageCount int) []Warning {
	var warnings []Warning
	if e.reader.Repaired() {
		warnings = append(warnings, Warning{Page: -1, Message: "cross-reference data was rebuilt"})
	}
	for i := 0; i < pageCount; i++ {
		if err := e.reader.ContentError(i); err != nil {
			warnings = append(warnings, Warning{Page: i, Message: "page content incomplete", Err: err})
		}
	}
	return warnings
}

// outcomeWarnings turns failures recorded by the engine into warnings. Cap
// and filter skips are expected and not reported.
func outcomeWarnings(outcomes []extract.Outcome) []Warning {
	var warnings []Warning
	for _, o := range outcomes {
		if o.Err == nil {
			continue
		}
		msg := o.Reason.String()
		if o.ID != "" {
			msg = fmt.Sprintf("image %s: %s", o.ID, msg)
		}
		warnings = append(warnings, Warning{Page: o.Page, Message: msg, Err: o.Err})
	}
	return warnings
}
