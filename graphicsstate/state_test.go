package graphicsstate

import (
	"math"
	"testing"

	"github.com/tsawler/pagevisuals/model"
)

func TestNewGraphicsState(t *testing.T) {
	gs := NewGraphicsState()
	if !gs.CTM.IsIdentity() {
		t.Errorf("CTM = %v, want identity", gs.CTM)
	}
	if gs.LineWidth != 1 {
		t.Errorf("LineWidth = %v, want 1", gs.LineWidth)
	}
	if gs.FillColor != Black || gs.StrokeColor != Black {
		t.Errorf("colours = %v/%v, want black", gs.FillColor, gs.StrokeColor)
	}
}

func TestSaveRestore(t *testing.T) {
	gs := NewGraphicsState()
	gs.Save()
	gs.Transform(model.Translate(10, 20))
	gs.SetLineWidth(3)
	gs.SetFillColor([]float64{1, 0, 0})

	if err := gs.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !gs.CTM.IsIdentity() || gs.LineWidth != 1 || gs.FillColor != Black {
		t.Errorf("state not restored: %+v", gs)
	}
	if gs.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", gs.Depth())
	}
}

func TestRestoreUnderflow(t *testing.T) {
	gs := NewGraphicsState()
	if err := gs.Restore(); err == nil {
		t.Error("expected underflow error")
	}
}

func TestTransformOrder(t *testing.T) {
	gs := NewGraphicsState()
	gs.Transform(model.Scale(2, 2))
	gs.Transform(model.Translate(10, 10))

	// the translation happens in the scaled space
	got := gs.CTM.Transform(model.Point{X: 0, Y: 0})
	if got != (model.Point{X: 20, Y: 20}) {
		t.Errorf("origin maps to %v, want (20,20)", got)
	}
}

func TestDeviceLineWidth(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetLineWidth(1.5)
	gs.Transform(model.Scale(2, 2))
	if got := gs.DeviceLineWidth(); got != 3 {
		t.Errorf("DeviceLineWidth = %v, want 3", got)
	}
	gs.SetLineWidth(-1)
	if gs.LineWidth != 0 {
		t.Errorf("negative width not clamped: %v", gs.LineWidth)
	}
}

func TestColors(t *testing.T) {
	tests := []struct {
		name  string
		comps []float64
		want  Color
	}{
		{"gray", []float64{0.5}, Color{0.5, 0.5, 0.5}},
		{"rgb", []float64{1, 0.5, 0}, Color{1, 0.5, 0}},
		{"cmyk cyan", []float64{1, 0, 0, 0}, Color{0, 1, 1}},
		{"cmyk black", []float64{0, 0, 0, 1}, Color{0, 0, 0}},
		{"clamped", []float64{2, -1, 0.5}, Color{1, 0, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := NewGraphicsState()
			gs.SetFillColor(tt.comps)
			gs.SetStrokeColor(tt.comps)
			for i := 0; i < 3; i++ {
				if math.Abs(gs.FillColor[i]-tt.want[i]) > 1e-9 {
					t.Errorf("FillColor = %v, want %v", gs.FillColor, tt.want)
					break
				}
			}
			if gs.StrokeColor != gs.FillColor {
				t.Errorf("StrokeColor = %v, want %v", gs.StrokeColor, gs.FillColor)
			}
		})
	}
}

func TestUnsupportedComponentCountKeepsColor(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetFillColor([]float64{0, 1, 0})
	gs.SetFillColor([]float64{0.1, 0.2})
	if gs.FillColor != (Color{0, 1, 0}) {
		t.Errorf("FillColor = %v, want green", gs.FillColor)
	}
	gs.ResetFillColor()
	if gs.FillColor != Black {
		t.Errorf("cs did not reset colour: %v", gs.FillColor)
	}
}
