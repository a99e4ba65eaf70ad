package reader

import (
	"fmt"
	"sort"

	"github.com/tsawler/pagevisuals/core"
	"github.com/tsawler/pagevisuals/graphicsstate"
	"github.com/tsawler/pagevisuals/model"
)

// pageContent is what a page's content stream paints.
type pageContent struct {
	box       model.Rect // crop box in default user space
	resources core.Dict
	drawings  []graphicsstate.Drawing
	images    []graphicsstate.ImagePlacement

	// first content stream problem; what was collected before it is kept
	err error
}

// collect interprets a page's content once and caches the result. Callers
// hold r.mu.
func (r *Reader) collect(index int) (*pageContent, error) {
	if pc, ok := r.content[index]; ok {
		return pc, nil
	}
	pg, err := r.page(index)
	if err != nil {
		return nil, err
	}
	resources, err := pg.Resources()
	if err != nil {
		return nil, fmt.Errorf("page %d resources: %w", index, err)
	}

	pc := &pageContent{box: pg.CropBox(), resources: resources}
	content, err := pg.ContentBytes()
	if err != nil {
		pc.err = fmt.Errorf("page %d contents: %w", index, err)
	}
	if len(content) > 0 {
		c := graphicsstate.NewCollector(objects{r})
		if err := c.Run(content, resources); err != nil && pc.err == nil {
			pc.err = fmt.Errorf("page %d content stream: %w", index, err)
		}
		pc.drawings = c.Drawings
		pc.images = c.Images
	}
	r.content[index] = pc
	return pc, nil
}

// toPage converts a default user space rectangle to points from the
// top-left corner of box.
func toPage(rect, box model.Rect) model.Rect {
	return model.Rect{
		X0: rect.X0 - box.X0,
		Y0: box.Y1 - rect.Y1,
		X1: rect.X1 - box.X0,
		Y1: box.Y1 - rect.Y0,
	}
}

// VectorDrawings returns one entry per painted path on the page, in paint
// order, with rectangles in top-left page coordinates.
func (r *Reader) VectorDrawings(page int) ([]model.VectorDrawing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pc, err := r.collect(page)
	if err != nil {
		return nil, err
	}
	out := make([]model.VectorDrawing, 0, len(pc.drawings))
	for _, d := range pc.drawings {
		out = append(out, model.VectorDrawing{Page: page, Rect: toPage(d.Rect, pc.box)})
	}
	return out, nil
}

// ContentError returns the content stream problem recorded for a page, if
// any. Drawings and images found before it are still reported.
func (r *Reader) ContentError(page int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pc, err := r.collect(page)
	if err != nil {
		return err
	}
	return pc.err
}

// EmbeddedImages returns the page's image XObjects and inline images. Images
// painted by the content stream come first, in paint order and once per
// placement, followed by image resources that are never painted, by name.
// An image that cannot be decoded is still reported, with its raw bytes and
// EncodingOther.
func (r *Reader) EmbeddedImages(page int) ([]model.ImageCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pc, err := r.collect(page)
	if err != nil {
		return nil, err
	}

	var out []model.ImageCandidate
	placed := make(map[*core.Stream]bool)
	inline := 0
	for _, p := range pc.images {
		if p.Inline() {
			inline++
			s := inlineStream(p.InlineDict, p.InlineData)
			out = append(out, r.candidate(page, fmt.Sprintf("inline-%d", inline), s, pc.resources))
			continue
		}
		placed[p.Stream] = true
		out = append(out, r.candidate(page, imageID(p.Ref, p.Name), p.Stream, pc.resources))
	}

	xobjects, _ := r.resolveDict(pc.resources.Get("XObject"))
	names := xobjects.Keys()
	sort.Strings(names)
	for _, name := range names {
		entry := xobjects.Get(name)
		ref, _ := entry.(core.IndirectRef)
		obj, err := objects{r}.Resolve(entry)
		if err != nil {
			continue
		}
		s, ok := obj.(*core.Stream)
		if !ok || placed[s] {
			continue
		}
		if subtype, _ := s.Dict.GetName("Subtype"); subtype != "Image" {
			continue
		}
		placed[s] = true
		out = append(out, r.candidate(page, imageID(ref, name), s, pc.resources))
	}
	return out, nil
}

func inlineStream(dict core.Dict, data []byte) *core.Stream {
	return &core.Stream{Dict: dict, Data: data}
}

// imageID is the object number for indirect images, or the resource name.
func imageID(ref core.IndirectRef, name string) string {
	if ref != (core.IndirectRef{}) {
		return fmt.Sprintf("%d", ref.Number)
	}
	return "direct-" + name
}

func (r *Reader) resolveDict(obj core.Object) (core.Dict, error) {
	if obj == nil {
		return nil, nil
	}
	resolved, err := objects{r}.Resolve(obj)
	if err != nil {
		return nil, err
	}
	d, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("expected dictionary, got %T", resolved)
	}
	return d, nil
}
