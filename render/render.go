package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/tsawler/pagevisuals/graphicsstate"
	"github.com/tsawler/pagevisuals/model"
)

// MaxSide caps the pixel size of a canvas in either direction.
const MaxSide = 10000

// minStrokePx is the thinnest stroke drawn, in pixels.
const minStrokePx = 1.0

// ErrEmptyClip is returned when the clip has no pixels at the given scale.
var ErrEmptyClip = errors.New("clip rectangle is empty")

// Canvas is a raster target for one clip of a page.
type Canvas struct {
	img  *image.RGBA
	clip model.Rect

	// default user space to pixel space
	toPixels model.Matrix
}

// NewCanvas creates a canvas covering clip, given in top-left page
// coordinates relative to box (the page's visible box in default user
// space), at sx by sy pixels per point. The clip is cut to the page first.
// When the result would exceed MaxSide pixels on either side, both scales
// are reduced by the same factor so the whole clip still fits. When alpha
// is false the canvas starts opaque white, otherwise fully transparent.
func NewCanvas(box, clip model.Rect, sx, sy float64, alpha bool) (*Canvas, error) {
	if sx <= 0 || sy <= 0 || math.IsNaN(sx) || math.IsNaN(sy) {
		return nil, fmt.Errorf("invalid scale %gx%g", sx, sy)
	}
	clip = clip.Intersection(model.Rect{X1: box.Width(), Y1: box.Height()})
	if clip.IsEmpty() {
		return nil, fmt.Errorf("%w: %+v", ErrEmptyClip, clip)
	}
	if f := math.Min(MaxSide/(clip.Width()*sx), MaxSide/(clip.Height()*sy)); f < 1 {
		sx, sy = sx*f, sy*f
	}
	w := min(int(math.Ceil(clip.Width()*sx)), MaxSide)
	h := min(int(math.Ceil(clip.Height()*sy)), MaxSide)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %+v", ErrEmptyClip, clip)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if !alpha {
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	}

	// x' = (x - box.X0 - clip.X0) * sx, y' = (box.Y1 - y - clip.Y0) * sy
	toPixels := model.Matrix{
		sx, 0,
		0, -sy,
		-(box.X0 + clip.X0) * sx,
		(box.Y1 - clip.Y0) * sy,
	}
	return &Canvas{img: img, clip: clip, toPixels: toPixels}, nil
}

// Clip returns the part of the requested clip that lies on the page.
func (c *Canvas) Clip() model.Rect { return c.clip }

// Image returns the canvas pixels.
func (c *Canvas) Image() *image.RGBA { return c.img }

// DrawPath paints a drawing: the fill first, then the stroke.
func (c *Canvas) DrawPath(d graphicsstate.Drawing) {
	if d.Fill {
		c.Fill(d.Subpaths, d.FillColor)
	}
	if d.Stroke {
		c.Stroke(d.Subpaths, d.LineWidth, d.StrokeColor)
	}
}

// Fill paints the interior of subpaths. Every subpath is closed implicitly.
// Overlapping subpaths are filled with the non-zero rule.
func (c *Canvas) Fill(subpaths []graphicsstate.Subpath, col graphicsstate.Color) {
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	painted := false
	for _, sp := range subpaths {
		if len(sp.Points) < 3 {
			continue
		}
		p := c.toPixels.Transform(sp.Points[0])
		z.MoveTo(float32(p.X), float32(p.Y))
		for _, pt := range sp.Points[1:] {
			p = c.toPixels.Transform(pt)
			z.LineTo(float32(p.X), float32(p.Y))
		}
		z.ClosePath()
		painted = true
	}
	if painted {
		z.Draw(c.img, b, image.NewUniform(toRGBA(col)), image.Point{})
	}
}

// Stroke paints every segment of subpaths as a band of the given width
// (in default user space units), extended by half the width at both ends
// so joins and caps are covered.
func (c *Canvas) Stroke(subpaths []graphicsstate.Subpath, width float64, col graphicsstate.Color) {
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	half := math.Max(width*c.toPixels.Scale(), minStrokePx) / 2
	painted := false
	band := func(a, e model.Point) {
		dx, dy := e.X-a.X, e.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			dx, dy, l = 1, 0, 1
		}
		ux, uy := dx/l*half, dy/l*half
		nx, ny := -uy, ux
		a = model.Point{X: a.X - ux, Y: a.Y - uy}
		e = model.Point{X: e.X + ux, Y: e.Y + uy}
		z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		z.LineTo(float32(e.X+nx), float32(e.Y+ny))
		z.LineTo(float32(e.X-nx), float32(e.Y-ny))
		z.LineTo(float32(a.X-nx), float32(a.Y-ny))
		z.ClosePath()
		painted = true
	}

	for _, sp := range subpaths {
		pts := make([]model.Point, len(sp.Points))
		for i, pt := range sp.Points {
			pts[i] = c.toPixels.Transform(pt)
		}
		for i := 1; i < len(pts); i++ {
			band(pts[i-1], pts[i])
		}
		if sp.Closed && len(pts) > 2 {
			band(pts[len(pts)-1], pts[0])
		}
	}
	if painted {
		z.Draw(c.img, b, image.NewUniform(toRGBA(col)), image.Point{})
	}
}

// DrawImage paints img so that its unit square lands where ctm maps it in
// default user space. Row 0 of img is the top of the unit square.
func (c *Canvas) DrawImage(img image.Image, ctm model.Matrix) {
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	// image pixels -> unit square, flipping rows
	toUnit := model.Matrix{
		1 / float64(sb.Dx()), 0,
		0, -1 / float64(sb.Dy()),
		-float64(sb.Min.X) / float64(sb.Dx()), 1 + float64(sb.Min.Y)/float64(sb.Dy()),
	}
	m := toUnit.Multiply(ctm).Multiply(c.toPixels)
	if det := m[0]*m[3] - m[1]*m[2]; det == 0 || math.IsNaN(det) {
		return
	}
	s2d := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	draw.BiLinear.Transform(c.img, s2d, img, sb, draw.Over, nil)
}

func toRGBA(c graphicsstate.Color) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(c[0] * 255)),
		G: uint8(math.Round(c[1] * 255)),
		B: uint8(math.Round(c[2] * 255)),
		A: 255,
	}
}
