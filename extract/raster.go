package extract

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pagevisuals/model"
)

// RasterizeRegions renders each region at VectorRenderScale on an opaque
// background. Regions on pages outside [0, pages) or that fail to render
// are dropped. Up to RenderWorkers regions render at once; clips keep the
// order of regions.
func (e *Engine) RasterizeRegions(ctx context.Context, pages int, regions []model.VectorRegion) ([]model.VectorClip, []Outcome, error) {
	rendered := make([][]byte, len(regions))
	failed := make([]error, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.workers())
	for i, r := range regions {
		if r.Page < 0 || r.Page >= pages {
			failed[i] = &RasterizationError{Page: r.Page, Rect: r.Rect, Err: ErrPageOutOfRange}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scale := e.cfg.VectorRenderScale
			data, err := e.backend.Rasterize(r.Page, r.Rect, scale, scale, false)
			if err != nil {
				failed[i] = &RasterizationError{Page: r.Page, Rect: r.Rect, Err: err}
				return nil
			}
			rendered[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		clips    []model.VectorClip
		outcomes []Outcome
	)
	for i, r := range regions {
		if failed[i] != nil {
			outcomes = append(outcomes, e.record(Outcome{Page: r.Page, Reason: SkipRasterize, Err: failed[i]}))
			continue
		}
		clips = append(clips, model.VectorClip{Page: r.Page, Rect: r.Rect, Blob: model.PNG(rendered[i])})
	}
	return clips, outcomes, nil
}
