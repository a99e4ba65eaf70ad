package graphicsstate

import (
	"fmt"

	"github.com/tsawler/pagevisuals/contentstream"
	"github.com/tsawler/pagevisuals/core"
	"github.com/tsawler/pagevisuals/model"
)

// maxFormDepth bounds Form XObject nesting.
const maxFormDepth = 16

// Resolver resolves indirect references found in resources.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Drawing is one painted path: everything between its first construction
// operator and the painting operator that ended it.
type Drawing struct {
	// Position in paint order among drawings and images
	Seq int

	// Subpaths in default user space, curves flattened
	Subpaths []Subpath

	// Bounds of Subpaths, without line width
	Rect model.Rect

	Fill    bool
	Stroke  bool
	EvenOdd bool

	FillColor   Color
	StrokeColor Color

	// Stroke width in default user space units
	LineWidth float64
}

// ImagePlacement is an image painted on the page, either an image XObject
// drawn with Do or an inline image.
type ImagePlacement struct {
	// Position in paint order among drawings and images
	Seq int

	// Resource name, "" for inline images
	Name string

	// Object reference of the XObject, zero for direct and inline images
	Ref core.IndirectRef

	// Image XObject stream, nil for inline images
	Stream *core.Stream

	// Inline image dictionary (keys expanded) and raw data
	InlineDict core.Dict
	InlineData []byte

	// Maps the unit square onto the image's position in default user space
	CTM model.Matrix
}

// Inline reports whether the placement is an inline image.
func (p ImagePlacement) Inline() bool { return p.Stream == nil }

// Bounds returns the placement's extent in default user space.
func (p ImagePlacement) Bounds() model.Rect {
	return p.CTM.TransformRect(model.Rect{X0: 0, Y0: 0, X1: 1, Y1: 1})
}

type formKey struct {
	ref    core.IndirectRef
	stream *core.Stream
}

// Collector runs a page's content stream and records every painted path and
// every placed image in content order. Form XObjects are entered with their
// /Matrix applied, so nested content is reported in the page's coordinates.
type Collector struct {
	Drawings []Drawing
	Images   []ImagePlacement

	resolver Resolver
	gs       *GraphicsState
	path     *Path
	active   map[formKey]bool
	depth    int
	seq      int
}

// NewCollector creates a collector. resolver may be nil when the content
// has no indirect resources.
func NewCollector(resolver Resolver) *Collector {
	return &Collector{
		resolver: resolver,
		gs:       NewGraphicsState(),
		path:     NewPath(),
		active:   make(map[formKey]bool),
	}
}

// Run interprets content with resources as the resource dictionary. Content
// that fails to parse part way is still interpreted up to the failure, and
// the parse error is returned alongside whatever was collected.
func (c *Collector) Run(content []byte, resources core.Dict) error {
	ops, err := contentstream.NewParser(content).Parse()
	c.execute(ops, resources)
	return err
}

// State returns the current graphics state.
func (c *Collector) State() *GraphicsState { return c.gs }

func (c *Collector) execute(ops []contentstream.Operation, resources core.Dict) {
	for _, op := range ops {
		c.apply(op, resources)
	}
}

func (c *Collector) apply(op contentstream.Operation, resources core.Dict) {
	switch op.Operator {
	// Graphics state
	case "q":
		c.gs.Save()
	case "Q":
		// unbalanced Q is common in the wild
		_ = c.gs.Restore()
	case "cm":
		if m, ok := operandsToMatrix(op.Operands); ok {
			c.gs.Transform(m)
		}
	case "w":
		if v, ok := numbers(op.Operands, 1); ok {
			c.gs.SetLineWidth(v[0])
		}
	case "gs":
		c.extGState(op.Operands, resources)

	// Colour
	case "G", "RG", "K", "SC", "SCN":
		c.gs.SetStrokeColor(numeric(op.Operands))
	case "g", "rg", "k", "sc", "scn":
		c.gs.SetFillColor(numeric(op.Operands))
	case "CS":
		c.gs.ResetStrokeColor()
	case "cs":
		c.gs.ResetFillColor()

	// Path construction
	case "m":
		if v, ok := numbers(op.Operands, 2); ok {
			c.path.MoveTo(c.point(v[0], v[1]))
		}
	case "l":
		if v, ok := numbers(op.Operands, 2); ok {
			c.path.LineTo(c.point(v[0], v[1]))
		}
	case "c":
		if v, ok := numbers(op.Operands, 6); ok {
			c.path.CurveTo(c.point(v[0], v[1]), c.point(v[2], v[3]), c.point(v[4], v[5]))
		}
	case "v":
		if v, ok := numbers(op.Operands, 4); ok {
			c.path.CurveToV(c.point(v[0], v[1]), c.point(v[2], v[3]))
		}
	case "y":
		if v, ok := numbers(op.Operands, 4); ok {
			c.path.CurveToY(c.point(v[0], v[1]), c.point(v[2], v[3]))
		}
	case "h":
		c.path.ClosePath()
	case "re":
		if v, ok := numbers(op.Operands, 4); ok {
			x, y, w, h := v[0], v[1], v[2], v[3]
			c.path.Rectangle([4]model.Point{
				c.point(x, y), c.point(x+w, y), c.point(x+w, y+h), c.point(x, y+h),
			})
		}

	// Path painting
	case "S":
		c.paint(false, true, false)
	case "s":
		c.path.ClosePath()
		c.paint(false, true, false)
	case "f", "F":
		c.paint(true, false, false)
	case "f*":
		c.paint(true, false, true)
	case "B":
		c.paint(true, true, false)
	case "B*":
		c.paint(true, true, true)
	case "b":
		c.path.ClosePath()
		c.paint(true, true, false)
	case "b*":
		c.path.ClosePath()
		c.paint(true, true, true)
	case "n":
		c.path.Clear()

	// Images and forms
	case "Do":
		if len(op.Operands) == 1 {
			if name, ok := op.Operands[0].(core.Name); ok {
				c.doXObject(string(name), resources)
			}
		}
	case "BI":
		c.inlineImage(op.Operands)
	}
}

func (c *Collector) next() int {
	c.seq++
	return c.seq - 1
}

// point maps user space coordinates through the CTM.
func (c *Collector) point(x, y float64) model.Point {
	return c.gs.CTM.Transform(model.Point{X: x, Y: y})
}

func (c *Collector) paint(fill, stroke, evenOdd bool) {
	defer c.path.Clear()
	subpaths := c.path.Painted()
	if len(subpaths) == 0 {
		return
	}
	c.Drawings = append(c.Drawings, Drawing{
		Seq:         c.next(),
		Subpaths:    subpaths,
		Rect:        Bounds(subpaths),
		Fill:        fill,
		Stroke:      stroke,
		EvenOdd:     evenOdd,
		FillColor:   c.gs.FillColor,
		StrokeColor: c.gs.StrokeColor,
		LineWidth:   c.gs.DeviceLineWidth(),
	})
}

func (c *Collector) extGState(operands []core.Object, resources core.Dict) {
	if len(operands) != 1 {
		return
	}
	name, ok := operands[0].(core.Name)
	if !ok {
		return
	}
	states := c.dict(resources.Get("ExtGState"))
	state := c.dict(states.Get(string(name)))
	if lw, ok := state.GetNumber("LW"); ok {
		c.gs.SetLineWidth(lw)
	}
}

func (c *Collector) doXObject(name string, resources core.Dict) {
	xobjects := c.dict(resources.Get("XObject"))
	entry := xobjects.Get(name)
	if entry == nil {
		return
	}
	ref, _ := entry.(core.IndirectRef)
	stream, ok := c.resolve(entry).(*core.Stream)
	if !ok {
		return
	}

	switch subtype, _ := stream.Dict.GetName("Subtype"); subtype {
	case "Image":
		c.Images = append(c.Images, ImagePlacement{
			Seq:    c.next(),
			Name:   name,
			Ref:    ref,
			Stream: stream,
			CTM:    c.gs.CTM,
		})
	case "Form":
		c.form(ref, stream, resources)
	}
}

func (c *Collector) form(ref core.IndirectRef, stream *core.Stream, parent core.Dict) {
	key := formKey{ref: ref}
	if ref == (core.IndirectRef{}) {
		key.stream = stream
	}
	if c.active[key] || c.depth >= maxFormDepth {
		return
	}
	content, err := stream.Decode()
	if err != nil {
		return
	}
	ops, _ := contentstream.NewParser(content).Parse()

	resources := parent
	if own := c.dict(stream.Dict.Get("Resources")); own != nil {
		resources = own
	}

	c.active[key] = true
	c.depth++
	depth := c.gs.Depth()
	outer := c.path
	c.path = NewPath()
	c.gs.Save()
	if arr, ok := c.resolve(stream.Dict.Get("Matrix")).(core.Array); ok {
		if m, ok := operandsToMatrix(arr); ok {
			c.gs.Transform(m)
		}
	}

	c.execute(ops, resources)

	for c.gs.Depth() > depth {
		_ = c.gs.Restore()
	}
	c.path = outer
	c.depth--
	delete(c.active, key)
}

func (c *Collector) inlineImage(operands []core.Object) {
	if len(operands) != 2 {
		return
	}
	dict, ok := operands[0].(core.Dict)
	if !ok {
		return
	}
	data, _ := operands[1].(core.String)
	c.Images = append(c.Images, ImagePlacement{
		Seq:        c.next(),
		InlineDict: dict,
		InlineData: []byte(data),
		CTM:        c.gs.CTM,
	})
}

func (c *Collector) resolve(obj core.Object) core.Object {
	if _, ok := obj.(core.IndirectRef); !ok || c.resolver == nil {
		return obj
	}
	resolved, err := c.resolver.Resolve(obj)
	if err != nil {
		return nil
	}
	return resolved
}

// dict resolves obj and returns it as a dictionary, or nil.
func (c *Collector) dict(obj core.Object) core.Dict {
	d, _ := c.resolve(obj).(core.Dict)
	return d
}

// numbers returns exactly n numeric operands.
func numbers(operands []core.Object, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, ok := core.Number(operands[len(operands)-n+i])
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// numeric returns the numeric operands, skipping a pattern name.
func numeric(operands []core.Object) []float64 {
	out := make([]float64, 0, len(operands))
	for _, op := range operands {
		if v, ok := core.Number(op); ok {
			out = append(out, v)
		}
	}
	return out
}

// operandsToMatrix converts six numeric operands to a matrix.
func operandsToMatrix(operands []core.Object) (model.Matrix, bool) {
	if len(operands) != 6 {
		return model.Matrix{}, false
	}
	var m model.Matrix
	for i, op := range operands {
		v, ok := core.Number(op)
		if !ok {
			return model.Matrix{}, false
		}
		m[i] = v
	}
	return m, true
}

// String summarises the collected content.
func (c *Collector) String() string {
	return fmt.Sprintf("%d drawing(s), %d image(s)", len(c.Drawings), len(c.Images))
}
