package graphicsstate

import (
	"fmt"

	"github.com/tsawler/pagevisuals/model"
)

// Color is an RGB colour with components in [0,1].
type Color [3]float64

// Black is the initial colour of both the fill and stroke state.
var Black = Color{0, 0, 0}

// GraphicsState represents the parts of the PDF graphics state that affect
// where and how paths and images are painted.
type GraphicsState struct {
	// Current Transformation Matrix, user space to default user space
	CTM model.Matrix

	// Line width in user space units
	LineWidth float64

	StrokeColor Color
	FillColor   Color

	// Graphics state stack (for q/Q operators)
	stack []snapshot
}

type snapshot struct {
	ctm         model.Matrix
	lineWidth   float64
	strokeColor Color
	fillColor   Color
}

// NewGraphicsState creates a new graphics state with default values
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:         model.Identity(),
		LineWidth:   1.0,
		StrokeColor: Black,
		FillColor:   Black,
	}
}

// Depth returns the number of saved states.
func (gs *GraphicsState) Depth() int { return len(gs.stack) }

// Save pushes the current graphics state onto the stack (q operator)
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, snapshot{
		ctm:         gs.CTM,
		lineWidth:   gs.LineWidth,
		strokeColor: gs.StrokeColor,
		fillColor:   gs.FillColor,
	})
}

// Restore pops a graphics state from the stack (Q operator)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}
	saved := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]

	gs.CTM = saved.ctm
	gs.LineWidth = saved.lineWidth
	gs.StrokeColor = saved.strokeColor
	gs.FillColor = saved.fillColor
	return nil
}

// Transform concatenates m onto the CTM (cm operator). Points are mapped by
// m first and then by the previous CTM.
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetLineWidth sets the line width (w operator)
func (gs *GraphicsState) SetLineWidth(width float64) {
	if width < 0 {
		width = 0
	}
	gs.LineWidth = width
}

// DeviceLineWidth returns the line width scaled by the CTM.
func (gs *GraphicsState) DeviceLineWidth() float64 {
	return gs.LineWidth * gs.CTM.Scale()
}

// ResetStrokeColor handles the CS operator: selecting a colour space resets
// the colour to its initial value, black for every device space.
func (gs *GraphicsState) ResetStrokeColor() {
	gs.StrokeColor = Black
}

// ResetFillColor handles the cs operator.
func (gs *GraphicsState) ResetFillColor() {
	gs.FillColor = Black
}

// SetStrokeColor sets the stroke colour from raw components (G, RG, K, SC,
// SCN). Component counts other than 1, 3 and 4 leave the colour unchanged.
func (gs *GraphicsState) SetStrokeColor(comps []float64) {
	if c, ok := toRGB(comps); ok {
		gs.StrokeColor = c
	}
}

// SetFillColor sets the fill colour from raw components (g, rg, k, sc, scn).
func (gs *GraphicsState) SetFillColor(comps []float64) {
	if c, ok := toRGB(comps); ok {
		gs.FillColor = c
	}
}

// toRGB converts gray, RGB or CMYK components to RGB.
func toRGB(comps []float64) (Color, bool) {
	switch len(comps) {
	case 1:
		g := clamp01(comps[0])
		return Color{g, g, g}, true
	case 3:
		return Color{clamp01(comps[0]), clamp01(comps[1]), clamp01(comps[2])}, true
	case 4:
		return cmykToRGB(comps[0], comps[1], comps[2], comps[3]), true
	}
	return Color{}, false
}

// cmykToRGB converts CMYK to RGB
func cmykToRGB(c, m, y, k float64) Color {
	return Color{
		clamp01((1 - c) * (1 - k)),
		clamp01((1 - m) * (1 - k)),
		clamp01((1 - y) * (1 - k)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
