package reader

import (
	"fmt"
	"image"
	"sort"

	"github.com/tsawler/pagevisuals/graphicsstate"
	"github.com/tsawler/pagevisuals/model"
	"github.com/tsawler/pagevisuals/render"
)

// Rasterize renders the part of a page inside clip (top-left page
// coordinates, in points) at sx by sy pixels per point and returns PNG
// bytes. Parts of clip outside the page are not rendered. Paths and images are painted in content order; text is not drawn.
// When alpha is false the background is opaque white.
func (r *Reader) Rasterize(page int, clip model.Rect, sx, sy float64, alpha bool) ([]byte, error) {
	canvas, ops, err := r.prepare(page, clip, sx, sy, alpha)
	if err != nil {
		return nil, err
	}
	for _, o := range ops {
		if o.img != nil {
			canvas.DrawImage(o.img, o.ctm)
		} else {
			canvas.DrawPath(o.drawing)
		}
	}
	data, err := r.codec.EncodePNG(canvas.Image())
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return data, nil
}

// paintOp is one drawing or decoded image in paint order.
type paintOp struct {
	seq     int
	drawing graphicsstate.Drawing
	img     image.Image
	ctm     model.Matrix
}

// prepare collects what intersects clip and decodes the images it needs
// while holding r.mu. Painting happens after the lock is released.
func (r *Reader) prepare(page int, clip model.Rect, sx, sy float64, alpha bool) (*render.Canvas, []paintOp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pc, err := r.collect(page)
	if err != nil {
		return nil, nil, err
	}
	canvas, err := render.NewCanvas(pc.box, clip, sx, sy, alpha)
	if err != nil {
		return nil, nil, fmt.Errorf("page %d: %w", page, err)
	}

	area := pageToUser(canvas.Clip(), pc.box)
	ops := make([]paintOp, 0, len(pc.drawings)+len(pc.images))
	for _, d := range pc.drawings {
		if d.Rect.Expand(d.LineWidth).Intersects(area) {
			ops = append(ops, paintOp{seq: d.Seq, drawing: d})
		}
	}
	for _, p := range pc.images {
		if !p.Bounds().Intersects(area) {
			continue
		}
		var img image.Image
		if p.Inline() {
			img, err = r.decodeImage(inlineStream(p.InlineDict, p.InlineData), pc.resources)
		} else {
			img, err = r.paintImage(p.Ref, p.Stream, pc.resources)
		}
		if err != nil {
			continue
		}
		ops = append(ops, paintOp{seq: p.Seq, img: img, ctm: p.CTM})
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].seq < ops[j].seq })
	return canvas, ops, nil
}

// pageToUser is the inverse of toPage.
func pageToUser(rect, box model.Rect) model.Rect {
	return model.Rect{
		X0: rect.X0 + box.X0,
		Y0: box.Y1 - rect.Y1,
		X1: rect.X1 + box.X0,
		Y1: box.Y1 - rect.Y0,
	}
}
