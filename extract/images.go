package extract

import (
	"context"
	"sort"

	"github.com/tsawler/pagevisuals/codec"
	"github.com/tsawler/pagevisuals/model"
)

// SelectImages walks pages in order and selects embedded images until
// MaxTotalImages is reached. Pages after that are not read.
func (e *Engine) SelectImages(ctx context.Context, pages int) ([]model.EmbeddedImage, []Outcome, error) {
	var (
		selected []model.EmbeddedImage
		outcomes []Outcome
	)
	budget := Budget{Max: e.cfg.MaxTotalImages}
	for page := 0; page < pages && !budget.Exhausted(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, outcomes, err
		}
		cands, err := e.backend.EmbeddedImages(page)
		if err != nil {
			outcomes = append(outcomes, e.record(Outcome{
				Page:   page,
				Reason: SkipDecode,
				Err:    &DecodeError{Page: page, Err: err},
			}))
			continue
		}
		var (
			kept []model.EmbeddedImage
			outs []Outcome
		)
		kept, outs, budget = e.SelectPageImages(page, cands, budget)
		selected = append(selected, kept...)
		outcomes = append(outcomes, outs...)
	}
	return selected, outcomes, nil
}

// SelectPageImages ranks one page's candidates and encodes the ones the
// page and total caps allow. A candidate that fails to encode is skipped
// and the next one in rank order takes its place.
func (e *Engine) SelectPageImages(page int, cands []model.ImageCandidate, budget Budget) ([]model.EmbeddedImage, []Outcome, Budget) {
	var (
		ranked   []model.ImageCandidate
		outcomes []Outcome
		selected []model.EmbeddedImage
	)
	seen := make(map[string]bool, len(cands))
	for _, c := range cands {
		if seen[c.ID] {
			outcomes = append(outcomes, e.record(Outcome{Page: page, ID: c.ID, Reason: SkipDuplicate}))
			continue
		}
		seen[c.ID] = true
		if c.Area() < e.cfg.MinImageArea {
			outcomes = append(outcomes, e.record(Outcome{Page: page, ID: c.ID, Reason: SkipTooSmall}))
			continue
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Area() > ranked[j].Area() })

	for _, c := range ranked {
		if len(selected) >= e.cfg.MaxImagesPerPage {
			outcomes = append(outcomes, e.record(Outcome{Page: page, ID: c.ID, Reason: SkipPageCap}))
			continue
		}
		if budget.Exhausted() {
			outcomes = append(outcomes, e.record(Outcome{Page: page, ID: c.ID, Reason: SkipTotalCap}))
			continue
		}

		data, enc, err := e.fitWithin(c.Data, c.Encoding)
		if err != nil {
			outcomes = append(outcomes, e.record(Outcome{Page: page, ID: c.ID, Reason: KeptOriginal, Err: err}))
		}
		blob, err := e.normalize(data, enc)
		if err != nil {
			outcomes = append(outcomes, e.record(Outcome{
				Page:   page,
				ID:     c.ID,
				Reason: SkipDecode,
				Err:    &DecodeError{Page: page, ID: c.ID, Err: err},
			}))
			continue
		}
		selected = append(selected, model.EmbeddedImage{Page: page, Blob: blob})
		budget = budget.Take(1)
	}
	return selected, outcomes, budget
}

// fitWithin downscales data so its larger side is at most MaxImageDim,
// keeping the aspect ratio. JPEG input stays JPEG, anything else becomes
// PNG. Data that is small enough, or cannot be inspected, is returned
// unchanged. A failed resize returns the original data with a *CodecError.
func (e *Engine) fitWithin(data []byte, enc model.Encoding) ([]byte, model.Encoding, error) {
	maxDim := e.cfg.MaxImageDim
	if maxDim <= 0 {
		return data, enc, nil
	}
	w, h, _, err := e.codec.DecodeRaster(data)
	if err != nil || max(w, h) <= maxDim {
		return data, enc, nil
	}

	scale := float64(maxDim) / float64(max(w, h))
	nw, nh := maxDim, max(1, int(float64(h)*scale))
	if h > w {
		nw, nh = max(1, int(float64(w)*scale)), maxDim
	}
	resized, err := e.codec.Resize(data, nw, nh)
	if err != nil {
		return data, enc, &CodecError{Op: "resize", Err: err}
	}
	if enc != model.EncodingJPEG {
		return resized, model.EncodingPNG, nil
	}
	jpg, err := e.codec.Reencode(resized, model.EncodingJPEG, codec.DefaultJPEGQuality)
	if err != nil {
		return data, enc, &CodecError{Op: "reencode", Err: err}
	}
	return jpg, model.EncodingJPEG, nil
}

// normalize tags PNG and JPEG data with their media type and converts
// anything else to PNG.
func (e *Engine) normalize(data []byte, enc model.Encoding) (model.Blob, error) {
	switch enc {
	case model.EncodingPNG:
		return model.PNG(data), nil
	case model.EncodingJPEG:
		return model.JPEG(data), nil
	}
	png, err := e.codec.Reencode(data, model.EncodingPNG, 0)
	if err != nil {
		return model.Blob{}, err
	}
	return model.PNG(png), nil
}
