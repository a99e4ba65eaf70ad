package graphicsstate

import (
	"testing"

	"github.com/tsawler/pagevisuals/model"
)

func pt(x, y float64) model.Point { return model.Point{X: x, Y: y} }

func TestPathRectangle(t *testing.T) {
	p := NewPath()
	p.Rectangle([4]model.Point{pt(10, 20), pt(110, 20), pt(110, 70), pt(10, 70)})

	if p.IsEmpty() {
		t.Fatal("rectangle path is empty")
	}
	sub := p.Painted()
	if len(sub) != 1 || !sub[0].Closed || len(sub[0].Points) != 4 {
		t.Fatalf("unexpected subpaths: %+v", sub)
	}
	if got := Bounds(sub); got != (model.Rect{X0: 10, Y0: 20, X1: 110, Y1: 70}) {
		t.Errorf("Bounds = %+v", got)
	}
}

func TestPathLoneMoveToIsNotPainted(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(0, 0))
	if !p.IsEmpty() {
		t.Error("a lone moveto should not be painted")
	}
	p.MoveTo(pt(5, 5))
	p.LineTo(pt(15, 5))
	if len(p.Subpaths) != 1 {
		t.Errorf("lone moveto was kept: %+v", p.Subpaths)
	}
}

func TestPathLineToWithoutCurrentPoint(t *testing.T) {
	p := NewPath()
	p.LineTo(pt(3, 4))
	if !p.HasCurrentPoint || !p.IsEmpty() {
		t.Errorf("lineto without current point should act as moveto")
	}
}

func TestPathClosePathStartsNewSubpath(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(0, 0))
	p.LineTo(pt(10, 0))
	p.LineTo(pt(10, 10))
	p.ClosePath()
	p.LineTo(pt(-5, 0))

	sub := p.Painted()
	if len(sub) != 2 {
		t.Fatalf("got %d subpaths, want 2", len(sub))
	}
	if sub[1].Points[0] != pt(0, 0) {
		t.Errorf("second subpath starts at %v, want the closed subpath's start", sub[1].Points[0])
	}
}

func TestPathCurveStaysInHull(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(0, 0))
	p.CurveTo(pt(0, 100), pt(100, 100), pt(100, 0))

	sub := p.Painted()
	if len(sub) != 1 || len(sub[0].Points) < 1+minCurveSegments {
		t.Fatalf("curve not flattened: %+v", sub)
	}
	last := sub[0].Points[len(sub[0].Points)-1]
	if last != pt(100, 0) {
		t.Errorf("curve ends at %v, want (100,0)", last)
	}
	b := Bounds(sub)
	// the apex of this cubic is at y=75
	if b.X0 != 0 || b.X1 != 100 || b.Y0 != 0 || b.Y1 < 74 || b.Y1 > 75.0001 {
		t.Errorf("Bounds = %+v", b)
	}
}

func TestPathCurveVariants(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(0, 0))
	p.CurveToV(pt(50, 50), pt(100, 0))
	p.CurveToY(pt(150, -50), pt(200, 0))
	if got := p.Painted()[0].Points; got[len(got)-1] != pt(200, 0) {
		t.Errorf("path ends at %v", got[len(got)-1])
	}
}

func TestPathClear(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(0, 0))
	p.LineTo(pt(1, 1))
	p.Clear()
	if !p.IsEmpty() || p.HasCurrentPoint {
		t.Error("Clear left state behind")
	}
}

func BenchmarkPathCurves(b *testing.B) {
	for i := 0; i < b.N; i++ {
		p := NewPath()
		p.MoveTo(pt(0, 0))
		for j := 0; j < 100; j++ {
			x := float64(j * 10)
			p.CurveTo(pt(x, 50), pt(x+10, 50), pt(x+10, 0))
		}
		_ = Bounds(p.Painted())
	}
}
