package extract

import (
	"context"
	"log/slog"

	"github.com/tsawler/pagevisuals/model"
)

// Engine runs the selection pipeline over one document.
type Engine struct {
	backend Backend
	codec   Codec
	cfg     Config
	logger  *slog.Logger
}

// New returns an engine. cfg is used as given; callers validate it first.
func New(backend Backend, codec Codec, cfg Config) *Engine {
	return &Engine{
		backend: backend,
		codec:   codec,
		cfg:     cfg,
		logger:  slog.Default(),
	}
}

// WithLogger returns a copy of the engine that logs to l.
func (e *Engine) WithLogger(l *slog.Logger) *Engine {
	c := *e
	c.logger = l
	return &c
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Result is everything one run selected.
type Result struct {
	PageCount int                   `json:"page_count"`
	Images    []model.EmbeddedImage `json:"images"`
	Regions   []model.VectorRegion  `json:"regions"`
	Clips     []model.VectorClip    `json:"clips"`

	// Dropped or degraded items, in the order they were met. Not cached.
	Outcomes []Outcome `json:"-"`
}

// Run selects embedded images, detects vector regions and rasterizes them.
// An unreadable document is reported as an *InputError; every other
// problem is recorded on the result. A cancelled ctx stops the run and its
// error is returned.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	n, err := e.backend.PageCount()
	if err != nil {
		return nil, &InputError{Err: err}
	}
	res := &Result{PageCount: n}

	images, outcomes, err := e.SelectImages(ctx, n)
	res.Outcomes = append(res.Outcomes, outcomes...)
	if err != nil {
		return nil, err
	}
	res.Images = images

	regions, outcomes, err := e.DetectRegions(ctx, n)
	res.Outcomes = append(res.Outcomes, outcomes...)
	if err != nil {
		return nil, err
	}
	res.Regions = regions

	clips, outcomes, err := e.RasterizeRegions(ctx, n, regions)
	res.Outcomes = append(res.Outcomes, outcomes...)
	if err != nil {
		return nil, err
	}
	res.Clips = clips

	e.logger.Info("extract: complete",
		"pages", n,
		"images", len(res.Images),
		"regions", len(res.Regions),
		"clips", len(res.Clips),
		"skipped", len(res.Outcomes))
	return res, nil
}

func (e *Engine) record(o Outcome) Outcome {
	attrs := []any{"page", o.Page + 1, "reason", o.Reason.String()}
	if o.ID != "" {
		attrs = append(attrs, "id", o.ID)
	}
	if o.Err != nil {
		attrs = append(attrs, "error", o.Err)
	}
	e.logger.Debug("extract: item skipped", attrs...)
	return o
}
