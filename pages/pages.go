package pages

import (
	"bytes"
	"fmt"

	"github.com/tsawler/pagevisuals/core"
	"github.com/tsawler/pagevisuals/model"
)

// maxTreeDepth bounds page tree recursion.
const maxTreeDepth = 64

// ObjectResolver resolves indirect references.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// Catalog is the document catalog.
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog wraps a catalog dictionary.
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Pages returns the root of the page tree.
func (c *Catalog) Pages() (core.Dict, error) {
	obj := c.dict.Get("Pages")
	if obj == nil {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}
	resolved, err := c.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid /Pages type: %T", resolved)
	}
	return dict, nil
}

// inherited carries the attributes a page may take from its ancestors.
type inherited struct {
	resources core.Object
	mediaBox  core.Object
	cropBox   core.Object
	rotate    core.Object
}

func (in inherited) with(node core.Dict) inherited {
	if v := node.Get("Resources"); v != nil {
		in.resources = v
	}
	if v := node.Get("MediaBox"); v != nil {
		in.mediaBox = v
	}
	if v := node.Get("CropBox"); v != nil {
		in.cropBox = v
	}
	if v := node.Get("Rotate"); v != nil {
		in.rotate = v
	}
	return in
}

// PageTree is the flattened page tree.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

// NewPageTree creates a page tree from the root /Pages dictionary.
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the number of leaf pages actually reachable, which may
// differ from a wrong /Count.
func (t *PageTree) Count() (int, error) {
	pages, err := t.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// GetPage returns the page at the 0-based index.
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(pages))
	}
	return pages[index], nil
}

// Pages returns all pages in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages != nil {
		return t.pages, nil
	}
	pages := make([]*Page, 0)
	visited := make(map[core.IndirectRef]bool)
	if err := t.walk(t.root, inherited{}, visited, 0, &pages); err != nil {
		return nil, fmt.Errorf("failed to traverse page tree: %w", err)
	}
	t.pages = pages
	return pages, nil
}

func (t *PageTree) walk(node core.Dict, in inherited, visited map[core.IndirectRef]bool, depth int, out *[]*Page) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}
	in = in.with(node)

	typ, _ := node.GetName("Type")
	if typ == "" {
		if node.Has("Kids") {
			typ = "Pages"
		} else {
			typ = "Page"
		}
	}

	switch typ {
	case "Pages":
		kidsObj, err := t.resolver.Resolve(node.Get("Kids"))
		if err != nil {
			return fmt.Errorf("failed to resolve /Kids: %w", err)
		}
		kids, ok := kidsObj.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Kids type: %T", kidsObj)
		}
		for i, kid := range kids {
			if ref, ok := kid.(core.IndirectRef); ok {
				if visited[ref] {
					continue
				}
				visited[ref] = true
			}
			resolved, err := t.resolver.Resolve(kid)
			if err != nil {
				return fmt.Errorf("failed to resolve kid %d: %w", i, err)
			}
			kidDict, ok := resolved.(core.Dict)
			if !ok {
				continue
			}
			if err := t.walk(kidDict, in, visited, depth+1, out); err != nil {
				return err
			}
		}
	case "Page":
		*out = append(*out, &Page{dict: node, inherited: in, resolver: t.resolver, index: len(*out)})
	default:
		return fmt.Errorf("unexpected page node type: %s", typ)
	}
	return nil
}

// Page is one leaf of the page tree with its inherited attributes applied.
type Page struct {
	dict      core.Dict
	inherited inherited
	resolver  ObjectResolver
	index     int
}

// NewPage creates a page with no inherited attributes.
func NewPage(dict core.Dict, resolver ObjectResolver) *Page {
	return &Page{dict: dict, inherited: inherited{}.with(dict), resolver: resolver}
}

// Index returns the 0-based page index.
func (p *Page) Index() int { return p.index }

// Dict returns the page dictionary.
func (p *Page) Dict() core.Dict { return p.dict }

// DefaultMediaBox is US Letter, used when no MediaBox is present anywhere.
var DefaultMediaBox = model.Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}

// MediaBox returns the media box in PDF user space (y up), normalized.
func (p *Page) MediaBox() model.Rect {
	if r, err := p.box(p.inherited.mediaBox); err == nil && !r.IsEmpty() {
		return r
	}
	return DefaultMediaBox
}

// CropBox returns the visible region: the crop box clipped to the media
// box, or the media box when absent or invalid.
func (p *Page) CropBox() model.Rect {
	media := p.MediaBox()
	r, err := p.box(p.inherited.cropBox)
	if err != nil {
		return media
	}
	clipped := r.Intersection(media)
	if clipped.IsEmpty() {
		return media
	}
	return clipped
}

func (p *Page) box(obj core.Object) (model.Rect, error) {
	if obj == nil {
		return model.Rect{}, fmt.Errorf("box not present")
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return model.Rect{}, err
	}
	arr, ok := resolved.(core.Array)
	if !ok || len(arr) != 4 {
		return model.Rect{}, fmt.Errorf("invalid box %v", resolved)
	}
	v, ok := arr.Numbers()
	if !ok {
		return model.Rect{}, fmt.Errorf("invalid box %v", arr)
	}
	return model.NewRect(v[0], v[1], v[2], v[3]), nil
}

// Resources returns the resource dictionary, empty when absent.
func (p *Page) Resources() (core.Dict, error) {
	if p.inherited.resources == nil {
		return core.Dict{}, nil
	}
	resolved, err := p.resolver.Resolve(p.inherited.resources)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	switch v := resolved.(type) {
	case core.Dict:
		return v, nil
	case core.Null:
		return core.Dict{}, nil
	}
	return nil, fmt.Errorf("invalid Resources type: %T", resolved)
}

// Rotate returns the page rotation normalized to 0, 90, 180 or 270.
func (p *Page) Rotate() int {
	obj, err := p.resolver.Resolve(p.inherited.rotate)
	if err != nil {
		return 0
	}
	n, ok := core.Number(obj)
	if !ok {
		return 0
	}
	r := (int(n)%360 + 360) % 360
	return r - r%90
}

// Contents returns the page content streams in order. Entries that do not
// resolve to streams are skipped.
func (p *Page) Contents() ([]*core.Stream, error) {
	obj := p.dict.Get("Contents")
	if obj == nil {
		return nil, nil
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}
	switch v := resolved.(type) {
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			r, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			if s, ok := r.(*core.Stream); ok {
				streams = append(streams, s)
			}
		}
		return streams, nil
	}
	return nil, fmt.Errorf("invalid Contents type: %T", resolved)
}

// ContentBytes decodes and concatenates the content streams, separated by
// newlines so tokens never join across stream boundaries.
func (p *Page) ContentBytes() ([]byte, error) {
	streams, err := p.Contents()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for i, s := range streams {
		data, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
