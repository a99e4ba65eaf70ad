package model

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

// ============================================================================
// Point Tests
// ============================================================================

func TestPointDistance(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   Point
		expected float64
	}{
		{"same point", Point{0, 0}, Point{0, 0}, 0},
		{"horizontal", Point{0, 0}, Point{3, 0}, 3},
		{"diagonal 3-4-5", Point{0, 0}, Point{3, 4}, 5},
		{"negative coords", Point{-1, -1}, Point{2, 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.p1.Distance(tt.p2)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("Distance() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// ============================================================================
// Rect Tests
// ============================================================================

func TestNewRectNormalizes(t *testing.T) {
	r := NewRect(50, 70, 10, 20)
	want := Rect{10, 20, 50, 70}
	if r != want {
		t.Errorf("NewRect() = %+v, want %+v", r, want)
	}
}

func TestRectFromPoints(t *testing.T) {
	r := RectFromPoints([]Point{{5, 5}, {1, 9}, {7, 2}})
	want := Rect{1, 2, 7, 9}
	if r != want {
		t.Errorf("RectFromPoints() = %+v, want %+v", r, want)
	}
	if got := RectFromPoints(nil); got != (Rect{}) {
		t.Errorf("RectFromPoints(nil) = %+v, want zero", got)
	}
}

func TestRectArea(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want float64
	}{
		{"normal", Rect{0, 0, 10, 20}, 200},
		{"zero width", Rect{5, 0, 5, 20}, 0},
		{"inverted", Rect{10, 10, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Area(); got != tt.want {
				t.Errorf("Area() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectExpand(t *testing.T) {
	r := Rect{10, 10, 20, 30}.Expand(6)
	want := Rect{4, 4, 26, 36}
	if r != want {
		t.Errorf("Expand(6) = %+v, want %+v", r, want)
	}
	if got := (Rect{1, 2, 3, 4}).Expand(0); got != (Rect{1, 2, 3, 4}) {
		t.Errorf("Expand(0) changed the rectangle: %+v", got)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{50, 60, 70, 80}
	want := Rect{0, 0, 70, 80}
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if got := b.Union(a); got != want {
		t.Errorf("Union() not symmetric: %+v", got)
	}
}

func TestRectIntersects(t *testing.T) {
	base := Rect{0, 0, 10, 10}
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"overlapping", Rect{5, 5, 15, 15}, true},
		{"contained", Rect{2, 2, 3, 3}, true},
		{"touching edge", Rect{10, 0, 20, 10}, true},
		{"touching corner", Rect{10, 10, 20, 20}, true},
		{"disjoint", Rect{11, 0, 20, 10}, false},
		{"disjoint vertical", Rect{0, 10.5, 10, 20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("Intersects() not symmetric")
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	outer := Rect{0, 0, 100, 100}
	if !outer.Contains(Rect{10, 10, 20, 20}) {
		t.Error("expected inner rectangle to be contained")
	}
	if outer.Contains(Rect{90, 90, 110, 95}) {
		t.Error("expected overflowing rectangle not to be contained")
	}
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"identical", Rect{0, 0, 10, 10}, Rect{0, 0, 10, 10}, 1},
		{"half overlap", Rect{0, 0, 10, 10}, Rect{5, 0, 15, 10}, 50.0 / 150.0},
		{"contained", Rect{0, 0, 10, 10}, Rect{0, 0, 5, 10}, 0.5},
		{"touching", Rect{0, 0, 10, 10}, Rect{10, 0, 20, 10}, 0},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 30, 30}, 0},
		{"degenerate", Rect{0, 0, 0, 0}, Rect{0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IoU(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IoU() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Matrix Tests
// ============================================================================

func TestMatrixTransform(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Point{3, 4}, Point{3, 4}},
		{"translate", Translate(10, 20), Point{1, 2}, Point{11, 22}},
		{"scale", Scale(2, 3), Point{1, 2}, Point{2, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.Transform(tt.in)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Transform() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// scale first, then translate
	m := Scale(2, 2).Multiply(Translate(10, 0))
	got := m.Transform(Point{1, 1})
	if got.X != 12 || got.Y != 2 {
		t.Errorf("Transform() = %+v, want {12 2}", got)
	}
}

func TestMatrixTransformRect(t *testing.T) {
	m := Matrix{0, 1, -1, 0, 0, 0} // 90 degree rotation
	got := m.TransformRect(Rect{0, 0, 10, 20})
	want := Rect{-20, 0, 0, 10}
	if got != want {
		t.Errorf("TransformRect() = %+v, want %+v", got, want)
	}
}

func TestMatrixIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Error("Identity() should be identity")
	}
	if Translate(1, 0).IsIdentity() {
		t.Error("translation should not be identity")
	}
}

// ============================================================================
// Artifact Tests
// ============================================================================

func TestImageCandidateArea(t *testing.T) {
	if got := (ImageCandidate{Width: 200, Height: 100}).Area(); got != 20000 {
		t.Errorf("Area() = %d, want 20000", got)
	}
	if got := (ImageCandidate{Width: -1, Height: 100}).Area(); got != 0 {
		t.Errorf("Area() = %d, want 0", got)
	}
}

func TestEncodingMIME(t *testing.T) {
	if EncodingPNG.MIME() != "image/png" || EncodingJPEG.MIME() != "image/jpeg" {
		t.Error("unexpected MIME for PNG/JPEG")
	}
	if EncodingOther.MIME() != "" {
		t.Error("EncodingOther should have no MIME")
	}
	if EncodingJPEG.String() != "jpeg" {
		t.Errorf("String() = %q", EncodingJPEG.String())
	}
}

// ============================================================================
// Blob Tests
// ============================================================================

func TestBlobDataURI(t *testing.T) {
	b := PNG([]byte{0x89, 'P', 'N', 'G'})
	uri := b.DataURI()
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("DataURI() = %q", uri)
	}

	parsed, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI() error: %v", err)
	}
	if parsed.MIME != MIMEPNG || !bytes.Equal(parsed.Data, b.Data) {
		t.Errorf("ParseDataURI() = %+v, want %+v", parsed, b)
	}
}

func TestBlobExt(t *testing.T) {
	if PNG(nil).Ext() != "png" {
		t.Error("expected png extension")
	}
	if JPEG(nil).Ext() != "jpg" {
		t.Error("expected jpg extension")
	}
}

func TestParseDataURIRejects(t *testing.T) {
	tests := []string{
		"not a data uri",
		"data:text/plain;base64,aGVsbG8=",
	}
	for _, in := range tests {
		if _, err := ParseDataURI(in); err == nil {
			t.Errorf("ParseDataURI(%q) expected error", in)
		}
	}
}
