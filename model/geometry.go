package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle in page points, x0<=x1 and y0<=y1.
// The origin is the top-left corner of the page's visible box and y grows
// downward, which is the convention the rasterizer clips with.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect returns a normalized rectangle spanning the two corners.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// RectFromPoints returns the bounding rectangle of points.
func RectFromPoints(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{X0: points[0].X, Y0: points[0].Y, X1: points[0].X, Y1: points[0].Y}
	for _, p := range points[1:] {
		r.X0 = math.Min(r.X0, p.X)
		r.Y0 = math.Min(r.Y0, p.Y)
		r.X1 = math.Max(r.X1, p.X)
		r.Y1 = math.Max(r.Y1, p.Y)
	}
	return r
}

// Width returns x1-x0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns y1-y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Area returns the area, or 0 for degenerate rectangles.
func (r Rect) Area() float64 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IsEmpty reports whether the rectangle has no interior.
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Expand grows the rectangle by pad on all four sides.
func (r Rect) Expand(pad float64) Rect {
	return Rect{X0: r.X0 - pad, Y0: r.Y0 - pad, X1: r.X1 + pad, Y1: r.Y1 + pad}
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// Intersection returns the overlapping rectangle. The result is empty
// (possibly with negative extent) when r and other do not overlap.
func (r Rect) Intersection(other Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, other.X0),
		Y0: math.Max(r.Y0, other.Y0),
		X1: math.Min(r.X1, other.X1),
		Y1: math.Min(r.Y1, other.Y1),
	}
}

// Intersects reports whether r and other share at least one point.
// Rectangles that only touch along an edge or corner intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.X0 <= other.X1 && other.X0 <= r.X1 &&
		r.Y0 <= other.Y1 && other.Y0 <= r.Y1
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.X0 >= r.X0 && other.Y0 >= r.Y0 && other.X1 <= r.X1 && other.Y1 <= r.Y1
}

// IoU returns the intersection-over-union of a and b. Rectangles whose
// intersection has zero or negative width or height score 0.
func IoU(a, b Rect) float64 {
	inter := a.Intersection(b)
	if inter.IsEmpty() {
		return 0
	}
	ia := inter.Area()
	den := a.Area() + b.Area() - ia
	if den <= 0 {
		return 0
	}
	return ia / den
}

// Matrix represents a 2D affine transformation [a b c d e f]
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m x other: applying the result is applying m first,
// then other.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// TransformRect maps the four corners of r and returns their bounds.
func (m Matrix) TransformRect(r Rect) Rect {
	return RectFromPoints([]Point{
		m.Transform(Point{r.X0, r.Y0}),
		m.Transform(Point{r.X1, r.Y0}),
		m.Transform(Point{r.X1, r.Y1}),
		m.Transform(Point{r.X0, r.Y1}),
	})
}

// Scale returns the largest axis scale factor of the linear part.
func (m Matrix) Scale() float64 {
	sx := math.Hypot(m[0], m[1])
	sy := math.Hypot(m[2], m[3])
	return math.Max(sx, sy)
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
