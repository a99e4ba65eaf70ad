package extract

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tsawler/pagevisuals/model"
)

type fakePage struct {
	images      []model.ImageCandidate
	imagesErr   error
	drawings    []model.VectorDrawing
	drawingsErr error
}

type rasterCall struct {
	page   int
	rect   model.Rect
	sx, sy float64
	alpha  bool
}

// fakeBackend serves canned pages and records what was asked of it.
type fakeBackend struct {
	pages     []fakePage
	countErr  error
	rasterErr map[int]error // by page

	mu          sync.Mutex
	imagePages  []int
	drawPages   []int
	rasterCalls []rasterCall
}

func (b *fakeBackend) PageCount() (int, error) {
	if b.countErr != nil {
		return 0, b.countErr
	}
	return len(b.pages), nil
}

func (b *fakeBackend) EmbeddedImages(page int) ([]model.ImageCandidate, error) {
	b.mu.Lock()
	b.imagePages = append(b.imagePages, page)
	b.mu.Unlock()
	p := b.pages[page]
	return p.images, p.imagesErr
}

func (b *fakeBackend) VectorDrawings(page int) ([]model.VectorDrawing, error) {
	b.mu.Lock()
	b.drawPages = append(b.drawPages, page)
	b.mu.Unlock()
	p := b.pages[page]
	return p.drawings, p.drawingsErr
}

func (b *fakeBackend) Rasterize(page int, rect model.Rect, sx, sy float64, alpha bool) ([]byte, error) {
	b.mu.Lock()
	b.rasterCalls = append(b.rasterCalls, rasterCall{page, rect, sx, sy, alpha})
	b.mu.Unlock()
	if err := b.rasterErr[page]; err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("clip %d %v", page, rect)), nil
}

// fakeCodec understands image bytes of the form "img WxH ...". Data
// containing "corrupt" cannot be re-encoded.
type fakeCodec struct {
	failResize bool
}

func (fakeCodec) DecodeRaster(data []byte) (int, int, string, error) {
	var w, h int
	if _, err := fmt.Sscanf(string(data), "img %dx%d", &w, &h); err != nil {
		return 0, 0, "", fmt.Errorf("unknown format")
	}
	return w, h, "fake", nil
}

func (c fakeCodec) Resize(data []byte, w, h int) ([]byte, error) {
	if c.failResize {
		return nil, errors.New("resize failed")
	}
	return []byte(fmt.Sprintf("img %dx%d resized", w, h)), nil
}

func (fakeCodec) Reencode(data []byte, target model.Encoding, quality int) ([]byte, error) {
	if strings.Contains(string(data), "corrupt") {
		return nil, errors.New("cannot decode")
	}
	return []byte(target.String() + ":" + string(data)), nil
}

func cand(page int, id string, w, h int, enc model.Encoding) model.ImageCandidate {
	return model.ImageCandidate{
		Page:     page,
		ID:       id,
		Width:    w,
		Height:   h,
		Data:     []byte(fmt.Sprintf("img %dx%d %s", w, h, id)),
		Encoding: enc,
	}
}

func drawing(page int, x0, y0, x1, y1 float64) model.VectorDrawing {
	return model.VectorDrawing{Page: page, Rect: model.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

func reasons(outcomes []Outcome) []SkipReason {
	out := make([]SkipReason, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Reason
	}
	return out
}
