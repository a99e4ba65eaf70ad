package codec

import (
	"fmt"
	"image"
	"image/color"
)

// Samples is an uncompressed PDF image: rows of packed component samples,
// each row padded to a whole byte.
type Samples struct {
	Width            int
	Height           int
	BitsPerComponent int

	// Components per pixel before palette lookup: 1 gray, 3 RGB, 4 CMYK.
	// Indexed images have 1.
	Components int

	Data []byte

	// Decode maps each component's raw range onto [0,1] in pairs, as the
	// image dictionary's /Decode array. Nil means the default mapping.
	Decode []float64

	// Palette for Indexed images, nil otherwise.
	Palette []color.RGBA
}

// Image converts the samples to an image. Gray samples yield *image.Gray,
// everything else *image.RGBA. Missing trailing data is an error.
func (s Samples) Image() (image.Image, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", s.Width, s.Height)
	}
	if err := checkSize(s.Width, s.Height); err != nil {
		return nil, err
	}
	switch s.BitsPerComponent {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", s.BitsPerComponent)
	}
	comps := s.Components
	switch {
	case s.Palette != nil:
		comps = 1
	case comps != 1 && comps != 3 && comps != 4:
		return nil, fmt.Errorf("unsupported component count: %d", comps)
	}
	if s.Decode != nil && len(s.Decode) < 2*comps {
		return nil, fmt.Errorf("decode array has %d entries, want %d", len(s.Decode), 2*comps)
	}

	rowBytes := (s.Width*comps*s.BitsPerComponent + 7) / 8
	if need := rowBytes * s.Height; len(s.Data) < need {
		return nil, fmt.Errorf("insufficient image data: got %d bytes, expected %d", len(s.Data), need)
	}

	maxVal := float64(uint32(1)<<uint(s.BitsPerComponent) - 1)
	bounds := image.Rect(0, 0, s.Width, s.Height)

	if comps == 1 && s.Palette == nil {
		img := image.NewGray(bounds)
		for y := 0; y < s.Height; y++ {
			r := bitReader{data: s.Data[y*rowBytes : (y+1)*rowBytes], bpc: s.BitsPerComponent}
			for x := 0; x < s.Width; x++ {
				v := s.level(0, float64(r.next())/maxVal)
				img.Pix[y*img.Stride+x] = to8(v)
			}
		}
		return img, nil
	}

	img := image.NewRGBA(bounds)
	vals := make([]float64, comps)
	for y := 0; y < s.Height; y++ {
		r := bitReader{data: s.Data[y*rowBytes : (y+1)*rowBytes], bpc: s.BitsPerComponent}
		for x := 0; x < s.Width; x++ {
			var c color.RGBA
			if s.Palette != nil {
				raw := r.next()
				idx := int(raw)
				if s.Decode != nil {
					idx = int(s.Decode[0] + float64(raw)*(s.Decode[1]-s.Decode[0])/maxVal + 0.5)
				}
				if idx >= len(s.Palette) {
					idx = len(s.Palette) - 1
				}
				if idx < 0 {
					idx = 0
				}
				c = s.Palette[idx]
			} else {
				for i := range vals {
					vals[i] = s.level(i, float64(r.next())/maxVal)
				}
				if comps == 3 {
					c = color.RGBA{to8(vals[0]), to8(vals[1]), to8(vals[2]), 255}
				} else {
					cr, cg, cb := color.CMYKToRGB(to8(vals[0]), to8(vals[1]), to8(vals[2]), to8(vals[3]))
					c = color.RGBA{cr, cg, cb, 255}
				}
			}
			off := y*img.Stride + x*4
			img.Pix[off+0] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = 255
		}
	}
	return img, nil
}

// level applies the decode mapping of component i to t in [0,1].
func (s Samples) level(i int, t float64) float64 {
	if s.Decode == nil {
		return t
	}
	lo, hi := s.Decode[2*i], s.Decode[2*i+1]
	return lo + t*(hi-lo)
}

// PaletteFromLookup builds an Indexed palette from the lookup table of a
// base space with baseComponents (1, 3 or 4) 8-bit components per entry.
func PaletteFromLookup(lookup []byte, baseComponents, hival int) ([]color.RGBA, error) {
	if baseComponents != 1 && baseComponents != 3 && baseComponents != 4 {
		return nil, fmt.Errorf("unsupported palette base with %d components", baseComponents)
	}
	if hival < 0 || hival > 255 {
		return nil, fmt.Errorf("invalid hival %d", hival)
	}
	n := hival + 1
	if avail := len(lookup) / baseComponents; avail < n {
		n = avail
	}
	if n == 0 {
		return nil, fmt.Errorf("empty palette lookup")
	}
	pal := make([]color.RGBA, n)
	for i := range pal {
		e := lookup[i*baseComponents : (i+1)*baseComponents]
		switch baseComponents {
		case 1:
			pal[i] = color.RGBA{e[0], e[0], e[0], 255}
		case 3:
			pal[i] = color.RGBA{e[0], e[1], e[2], 255}
		case 4:
			r, g, b := color.CMYKToRGB(e[0], e[1], e[2], e[3])
			pal[i] = color.RGBA{r, g, b, 255}
		}
	}
	return pal, nil
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// bitReader reads MSB-first packed samples from one row.
type bitReader struct {
	data []byte
	bpc  int
	pos  int // bit offset
}

func (r *bitReader) next() uint32 {
	switch r.bpc {
	case 8:
		v := uint32(r.data[r.pos/8])
		r.pos += 8
		return v
	case 16:
		i := r.pos / 8
		v := uint32(r.data[i])<<8 | uint32(r.data[i+1])
		r.pos += 16
		return v
	}
	b := r.data[r.pos/8]
	shift := 8 - r.bpc - r.pos%8
	r.pos += r.bpc
	return uint32(b>>uint(shift)) & (1<<uint(r.bpc) - 1)
}
