package graphicsstate

import (
	"math"

	"github.com/tsawler/pagevisuals/model"
)

// Curve flattening bounds, in segments per cubic.
const (
	minCurveSegments = 4
	maxCurveSegments = 64
)

// Subpath is a polyline in default user space. Curves are already flattened.
type Subpath struct {
	Points []model.Point
	Closed bool
}

// Path is the path under construction. Callers transform coordinates by the
// CTM before adding them, so every point is in default user space.
type Path struct {
	Subpaths []Subpath

	current         model.Point
	HasCurrentPoint bool
}

// NewPath creates a new empty path
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new subpath (m operator)
func (p *Path) MoveTo(pt model.Point) {
	// a trailing lone moveto is replaced, not kept
	if n := len(p.Subpaths); n > 0 && len(p.Subpaths[n-1].Points) == 1 {
		p.Subpaths = p.Subpaths[:n-1]
	}
	p.Subpaths = append(p.Subpaths, Subpath{Points: []model.Point{pt}})
	p.current = pt
	p.HasCurrentPoint = true
}

// LineTo appends a straight segment (l operator). Without a current point it
// behaves like MoveTo.
func (p *Path) LineTo(pt model.Point) {
	if !p.HasCurrentPoint {
		p.MoveTo(pt)
		return
	}
	sp := p.open()
	sp.Points = append(sp.Points, pt)
	p.current = pt
}

// CurveTo appends a cubic Bezier (c operator).
func (p *Path) CurveTo(c1, c2, end model.Point) {
	if !p.HasCurrentPoint {
		p.MoveTo(c1)
	}
	sp := p.open()
	sp.Points = appendCubic(sp.Points, p.current, c1, c2, end)
	p.current = end
}

// CurveToV appends a cubic whose first control point is the current point
// (v operator).
func (p *Path) CurveToV(c2, end model.Point) {
	p.CurveTo(p.current, c2, end)
}

// CurveToY appends a cubic whose second control point is the end point
// (y operator).
func (p *Path) CurveToY(c1, end model.Point) {
	p.CurveTo(c1, end, end)
}

// ClosePath closes the current subpath (h operator). The current point
// returns to the subpath's start.
func (p *Path) ClosePath() {
	n := len(p.Subpaths)
	if n == 0 || !p.HasCurrentPoint {
		return
	}
	sp := &p.Subpaths[n-1]
	sp.Closed = true
	p.current = sp.Points[0]
}

// Rectangle appends a closed four-corner subpath (re operator). The corners
// are given already transformed, in drawing order.
func (p *Path) Rectangle(corners [4]model.Point) {
	p.MoveTo(corners[0])
	p.LineTo(corners[1])
	p.LineTo(corners[2])
	p.LineTo(corners[3])
	p.ClosePath()
}

// open returns the subpath that new segments extend. After a closepath the
// next segment starts a fresh subpath at the current point.
func (p *Path) open() *Subpath {
	n := len(p.Subpaths)
	if n == 0 || p.Subpaths[n-1].Closed {
		p.Subpaths = append(p.Subpaths, Subpath{Points: []model.Point{p.current}})
		n++
	}
	return &p.Subpaths[n-1]
}

// Clear removes all segments
func (p *Path) Clear() {
	p.Subpaths = nil
	p.HasCurrentPoint = false
}

// IsEmpty reports whether the path has no painted segments.
func (p *Path) IsEmpty() bool {
	for _, sp := range p.Subpaths {
		if len(sp.Points) > 1 {
			return false
		}
	}
	return true
}

// Painted returns the subpaths that contain at least one segment.
func (p *Path) Painted() []Subpath {
	out := make([]Subpath, 0, len(p.Subpaths))
	for _, sp := range p.Subpaths {
		if len(sp.Points) > 1 {
			out = append(out, sp)
		}
	}
	return out
}

// Bounds returns the bounding rectangle of every painted point. Line width
// is not included.
func Bounds(subpaths []Subpath) model.Rect {
	var pts []model.Point
	for _, sp := range subpaths {
		pts = append(pts, sp.Points...)
	}
	return model.RectFromPoints(pts)
}

// appendCubic flattens the cubic p0..p3 into line segments, appending every
// point after p0.
func appendCubic(dst []model.Point, p0, p1, p2, p3 model.Point) []model.Point {
	length := p0.Distance(p1) + p1.Distance(p2) + p2.Distance(p3)
	n := int(math.Ceil(length / 2))
	if n < minCurveSegments {
		n = minCurveSegments
	}
	if n > maxCurveSegments {
		n = maxCurveSegments
	}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		dst = append(dst, model.Point{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
	return dst
}
