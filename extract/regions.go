package extract

import (
	"context"
	"sort"

	"github.com/tsawler/pagevisuals/merge"
	"github.com/tsawler/pagevisuals/model"
)

// DetectRegions walks pages in order and collects vector regions until
// MaxVectorRegionsTotal is reached.
func (e *Engine) DetectRegions(ctx context.Context, pages int) ([]model.VectorRegion, []Outcome, error) {
	var (
		regions  []model.VectorRegion
		outcomes []Outcome
	)
	budget := Budget{Max: e.cfg.MaxVectorRegionsTotal}
	for page := 0; page < pages && !budget.Exhausted(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, outcomes, err
		}
		drawings, err := e.backend.VectorDrawings(page)
		if err != nil {
			outcomes = append(outcomes, e.record(Outcome{
				Page:   page,
				Reason: SkipDecode,
				Err:    &DecodeError{Page: page, Err: err},
			}))
			continue
		}
		var found []model.VectorRegion
		found, budget = e.DetectPageRegions(page, drawings, budget)
		regions = append(regions, found...)
	}
	return regions, outcomes, nil
}

// DetectPageRegions filters one page's drawings by area, pads them, merges
// overlapping ones and returns the largest clusters the caps allow.
func (e *Engine) DetectPageRegions(page int, drawings []model.VectorDrawing, budget Budget) ([]model.VectorRegion, Budget) {
	var rects []model.Rect
	for _, d := range drawings {
		if d.Rect.Area() < e.cfg.MinVectorAreaPt {
			continue
		}
		rects = append(rects, d.Rect.Expand(e.cfg.RegionPadPt))
	}
	if len(rects) == 0 {
		return nil, budget
	}

	merged := merge.Rects(rects, e.cfg.MergeThreshold)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Area() > merged[j].Area() })

	var out []model.VectorRegion
	for _, r := range merged {
		if len(out) >= e.cfg.MaxVectorRegionsPerPage || budget.Exhausted() {
			break
		}
		out = append(out, model.VectorRegion{Page: page, Rect: r})
		budget = budget.Take(1)
	}
	return out, budget
}
