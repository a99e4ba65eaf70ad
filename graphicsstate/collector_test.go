package graphicsstate

import (
	"fmt"
	"math"
	"testing"

	"github.com/tsawler/pagevisuals/core"
	"github.com/tsawler/pagevisuals/model"
)

type mapResolver map[core.IndirectRef]core.Object

func (m mapResolver) Resolve(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj, nil
	}
	if v, ok := m[ref]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("object %v not found", ref)
}

func rectNear(a, b model.Rect) bool {
	const eps = 1e-6
	return math.Abs(a.X0-b.X0) < eps && math.Abs(a.Y0-b.Y0) < eps &&
		math.Abs(a.X1-b.X1) < eps && math.Abs(a.Y1-b.Y1) < eps
}

func collect(t *testing.T, content string, resources core.Dict, resolver Resolver) *Collector {
	t.Helper()
	c := NewCollector(resolver)
	if err := c.Run([]byte(content), resources); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return c
}

func TestCollectorPaintOperators(t *testing.T) {
	tests := []struct {
		name    string
		content string
		fill    bool
		stroke  bool
		evenOdd bool
	}{
		{"stroke", "10 10 m 100 10 l 100 50 l S", false, true, false},
		{"close stroke", "10 10 m 100 10 l 100 50 l s", false, true, false},
		{"fill", "10 10 90 40 re f", true, false, false},
		{"fill F", "10 10 90 40 re F", true, false, false},
		{"fill even-odd", "10 10 90 40 re f*", true, false, true},
		{"fill stroke", "10 10 90 40 re B", true, true, false},
		{"fill stroke even-odd", "10 10 90 40 re B*", true, true, true},
		{"close fill stroke", "10 10 m 100 10 l 100 50 l b", true, true, false},
		{"close fill stroke even-odd", "10 10 m 100 10 l 100 50 l b*", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := collect(t, tt.content, nil, nil)
			if len(c.Drawings) != 1 {
				t.Fatalf("got %d drawings, want 1", len(c.Drawings))
			}
			d := c.Drawings[0]
			if d.Fill != tt.fill || d.Stroke != tt.stroke || d.EvenOdd != tt.evenOdd {
				t.Errorf("flags fill=%v stroke=%v evenodd=%v", d.Fill, d.Stroke, d.EvenOdd)
			}
			if !rectNear(d.Rect, model.Rect{X0: 10, Y0: 10, X1: 100, Y1: 50}) {
				t.Errorf("Rect = %+v", d.Rect)
			}
		})
	}
}

func TestCollectorEndPathPaintsNothing(t *testing.T) {
	c := collect(t, "0 0 100 100 re W n 10 10 m 20 20 l n", nil, nil)
	if len(c.Drawings) != 0 {
		t.Errorf("got %d drawings, want 0", len(c.Drawings))
	}
}

func TestCollectorOneDrawingPerPaint(t *testing.T) {
	content := `
0 0 10 10 re 20 20 10 10 re f
0 0 m 50 0 l S
5 5 m S
`
	c := collect(t, content, nil, nil)
	if len(c.Drawings) != 2 {
		t.Fatalf("got %d drawings, want 2", len(c.Drawings))
	}
	if len(c.Drawings[0].Subpaths) != 2 {
		t.Errorf("first drawing has %d subpaths, want 2", len(c.Drawings[0].Subpaths))
	}
	if !rectNear(c.Drawings[0].Rect, model.Rect{X0: 0, Y0: 0, X1: 30, Y1: 30}) {
		t.Errorf("first Rect = %+v", c.Drawings[0].Rect)
	}
	if c.Drawings[1].Rect.Area() != 0 {
		t.Errorf("a horizontal line has no area: %+v", c.Drawings[1].Rect)
	}
}

func TestCollectorTransformAndState(t *testing.T) {
	content := `
q 2 0 0 2 100 100 cm 1 0 0 rg 3 w 0 0 10 10 re B Q
0 0 10 10 re f
`
	c := collect(t, content, nil, nil)
	if len(c.Drawings) != 2 {
		t.Fatalf("got %d drawings, want 2", len(c.Drawings))
	}
	d := c.Drawings[0]
	if !rectNear(d.Rect, model.Rect{X0: 100, Y0: 100, X1: 120, Y1: 120}) {
		t.Errorf("transformed Rect = %+v", d.Rect)
	}
	if d.FillColor != (Color{1, 0, 0}) {
		t.Errorf("FillColor = %v", d.FillColor)
	}
	if d.LineWidth != 6 {
		t.Errorf("LineWidth = %v, want 6", d.LineWidth)
	}

	after := c.Drawings[1]
	if !rectNear(after.Rect, model.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}) || after.FillColor != Black {
		t.Errorf("state leaked past Q: %+v", after)
	}
}

func TestCollectorColorOperators(t *testing.T) {
	c := collect(t, "0.5 g 0 0 1 RG 0 0 10 10 re B /P0 cs 0 1 0 sc 0 0 10 10 re f 1 0 0 0 K 0 0 1 1 re S", nil, nil)
	if len(c.Drawings) != 3 {
		t.Fatalf("got %d drawings", len(c.Drawings))
	}
	if c.Drawings[0].FillColor != (Color{0.5, 0.5, 0.5}) || c.Drawings[0].StrokeColor != (Color{0, 0, 1}) {
		t.Errorf("first colours %v %v", c.Drawings[0].FillColor, c.Drawings[0].StrokeColor)
	}
	if c.Drawings[1].FillColor != (Color{0, 1, 0}) {
		t.Errorf("sc colour %v", c.Drawings[1].FillColor)
	}
	if c.Drawings[2].StrokeColor != (Color{0, 1, 1}) {
		t.Errorf("K colour %v", c.Drawings[2].StrokeColor)
	}
}

func TestCollectorExtGStateLineWidth(t *testing.T) {
	resources := core.Dict{
		"ExtGState": core.Dict{"GS1": core.Dict{"LW": core.Real(4)}},
	}
	c := collect(t, "/GS1 gs 0 0 m 10 0 l S", resources, nil)
	if len(c.Drawings) != 1 || c.Drawings[0].LineWidth != 4 {
		t.Errorf("drawings = %+v", c.Drawings)
	}
}

func TestCollectorImagePlacement(t *testing.T) {
	img := &core.Stream{Dict: core.Dict{
		"Type": core.Name("XObject"), "Subtype": core.Name("Image"),
		"Width": core.Int(4), "Height": core.Int(4),
	}}
	resolver := mapResolver{{Number: 7}: img}
	resources := core.Dict{"XObject": core.Dict{"Im1": core.IndirectRef{Number: 7}}}

	c := collect(t, "q 200 0 0 100 50 60 cm /Im1 Do Q /Im1 Do /Missing Do", resources, resolver)
	if len(c.Images) != 2 {
		t.Fatalf("got %d placements, want 2", len(c.Images))
	}
	p := c.Images[0]
	if p.Name != "Im1" || p.Ref.Number != 7 || p.Stream != img || p.Inline() {
		t.Errorf("placement = %+v", p)
	}
	if !rectNear(p.Bounds(), model.Rect{X0: 50, Y0: 60, X1: 250, Y1: 160}) {
		t.Errorf("Bounds = %+v", p.Bounds())
	}
	if !c.Images[1].CTM.IsIdentity() {
		t.Errorf("second placement CTM = %v", c.Images[1].CTM)
	}
}

func TestCollectorFormXObject(t *testing.T) {
	form := &core.Stream{
		Dict: core.Dict{
			"Subtype": core.Name("Form"),
			"Matrix":  core.Array{core.Int(1), core.Int(0), core.Int(0), core.Int(1), core.Int(100), core.Int(0)},
			"Resources": core.Dict{"XObject": core.Dict{
				"Im0": core.IndirectRef{Number: 9},
			}},
		},
		Data: []byte("0 0 10 10 re f /Im0 Do"),
	}
	img := &core.Stream{Dict: core.Dict{"Subtype": core.Name("Image")}}
	resolver := mapResolver{{Number: 8}: form, {Number: 9}: img}
	resources := core.Dict{"XObject": core.Dict{"Fm0": core.IndirectRef{Number: 8}}}

	c := collect(t, "2 0 0 2 0 0 cm /Fm0 Do 0 0 1 1 re f", resources, resolver)
	if len(c.Drawings) != 2 {
		t.Fatalf("got %d drawings, want 2", len(c.Drawings))
	}
	// form matrix first, then the page CTM
	if !rectNear(c.Drawings[0].Rect, model.Rect{X0: 200, Y0: 0, X1: 220, Y1: 20}) {
		t.Errorf("form drawing Rect = %+v", c.Drawings[0].Rect)
	}
	if !rectNear(c.Drawings[1].Rect, model.Rect{X0: 0, Y0: 0, X1: 2, Y1: 2}) {
		t.Errorf("form state leaked: %+v", c.Drawings[1].Rect)
	}
	if len(c.Images) != 1 || c.Images[0].Ref.Number != 9 {
		t.Fatalf("images = %+v", c.Images)
	}
}

func TestCollectorFormCycle(t *testing.T) {
	form := &core.Stream{
		Dict: core.Dict{
			"Subtype": core.Name("Form"),
			"Resources": core.Dict{"XObject": core.Dict{
				"Self": core.IndirectRef{Number: 3},
			}},
		},
		Data: []byte("/Self Do 0 0 10 10 re f"),
	}
	resolver := mapResolver{{Number: 3}: form}
	resources := core.Dict{"XObject": core.Dict{"Self": core.IndirectRef{Number: 3}}}

	c := collect(t, "/Self Do", resources, resolver)
	if len(c.Drawings) != 1 {
		t.Errorf("got %d drawings, want 1", len(c.Drawings))
	}
}

func TestCollectorInlineImage(t *testing.T) {
	content := "q 30 0 0 20 5 5 cm BI /W 2 /H 1 /CS /G /BPC 8 ID \x00\xff EI Q"
	c := collect(t, content, nil, nil)
	if len(c.Images) != 1 {
		t.Fatalf("got %d placements, want 1", len(c.Images))
	}
	p := c.Images[0]
	if !p.Inline() || string(p.InlineData) != "\x00\xff" {
		t.Errorf("placement = %+v", p)
	}
	if w, _ := p.InlineDict.GetInt("Width"); w != 2 {
		t.Errorf("inline Width = %v", w)
	}
	if !rectNear(p.Bounds(), model.Rect{X0: 5, Y0: 5, X1: 35, Y1: 25}) {
		t.Errorf("Bounds = %+v", p.Bounds())
	}
}

func TestCollectorIgnoresText(t *testing.T) {
	c := collect(t, "BT /F1 12 Tf 72 700 Td (Hello) Tj ET", nil, nil)
	if len(c.Drawings) != 0 || len(c.Images) != 0 {
		t.Errorf("text produced output: %s", c)
	}
}

func TestCollectorUnbalancedRestore(t *testing.T) {
	c := collect(t, "Q Q 0 0 5 5 re f", nil, nil)
	if len(c.Drawings) != 1 {
		t.Errorf("got %d drawings, want 1", len(c.Drawings))
	}
}

func TestCollectorKeepsWorkBeforeParseError(t *testing.T) {
	c := NewCollector(nil)
	err := c.Run([]byte("0 0 5 5 re f ) 0 0 9 9 re f"), nil)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if len(c.Drawings) == 0 {
		t.Error("drawings before the error were lost")
	}
}

func TestCollectorPaintOrder(t *testing.T) {
	img := &core.Stream{Dict: core.Dict{"Subtype": core.Name("Image")}}
	resources := core.Dict{"XObject": core.Dict{"Im": img}}
	c := collect(t, "0 0 1 1 re f /Im Do 0 0 2 2 re f", resources, nil)
	if len(c.Drawings) != 2 || len(c.Images) != 1 {
		t.Fatalf("collected %s", c)
	}
	if c.Drawings[0].Seq != 0 || c.Images[0].Seq != 1 || c.Drawings[1].Seq != 2 {
		t.Errorf("seq = %d %d %d, want 0 1 2", c.Drawings[0].Seq, c.Images[0].Seq, c.Drawings[1].Seq)
	}
	if c.Images[0].Ref != (core.IndirectRef{}) {
		t.Errorf("direct image has ref %v", c.Images[0].Ref)
	}
}
