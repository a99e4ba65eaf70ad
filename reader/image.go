package reader

import (
	"fmt"
	"image"
	"image/color"

	"github.com/tsawler/pagevisuals/codec"
	"github.com/tsawler/pagevisuals/core"
	"github.com/tsawler/pagevisuals/model"
)

// decodedImage caches an image XObject decoded for painting.
type decodedImage struct {
	img image.Image
	err error
}

// candidate builds the image candidate for one image stream. JPEG payloads
// are passed through, raw samples are converted to PNG, and anything else
// (JPX, JBIG2, undecodable data) is reported as EncodingOther with the
// stream bytes.
func (r *Reader) candidate(page int, id string, s *core.Stream, resources core.Dict) model.ImageCandidate {
	w, _ := s.Dict.GetInt("Width")
	h, _ := s.Dict.GetInt("Height")
	c := model.ImageCandidate{
		Page:     page,
		ID:       id,
		Width:    int(w),
		Height:   int(h),
		Data:     s.Data,
		Encoding: model.EncodingOther,
	}

	data, filter, _, err := s.DecodeUntilImage()
	if err != nil {
		return c
	}
	switch filter {
	case "DCTDecode":
		c.Data = data
		c.Encoding = model.EncodingJPEG
		return c
	case "":
	default:
		c.Data = data
		return c
	}

	img, err := r.samplesImage(s.Dict, data, resources)
	if err != nil {
		c.Data = data
		return c
	}
	png, err := r.codec.EncodePNG(img)
	if err != nil {
		c.Data = data
		return c
	}
	c.Data = png
	c.Encoding = model.EncodingPNG
	return c
}

// paintImage decodes an image for rasterization. Stencil masks are not
// painted. Results are cached by object reference.
func (r *Reader) paintImage(ref core.IndirectRef, s *core.Stream, resources core.Dict) (image.Image, error) {
	if ref != (core.IndirectRef{}) {
		if d, ok := r.decoded[ref]; ok {
			return d.img, d.err
		}
	}
	img, err := r.decodeImage(s, resources)
	if ref != (core.IndirectRef{}) {
		r.decoded[ref] = decodedImage{img: img, err: err}
	}
	return img, err
}

func (r *Reader) decodeImage(s *core.Stream, resources core.Dict) (image.Image, error) {
	if mask, _ := s.Dict.GetBool("ImageMask"); mask {
		return nil, fmt.Errorf("stencil masks are not painted")
	}
	data, filter, _, err := s.DecodeUntilImage()
	if err != nil {
		return nil, err
	}
	switch filter {
	case "DCTDecode":
		img, _, err := r.codec.Decode(data)
		return img, err
	case "":
		return r.samplesImage(s.Dict, data, resources)
	}
	return nil, fmt.Errorf("%s images are not supported", filter)
}

// samplesImage interprets unfiltered samples according to the image
// dictionary.
func (r *Reader) samplesImage(dict core.Dict, data []byte, resources core.Dict) (image.Image, error) {
	w, _ := dict.GetInt("Width")
	h, _ := dict.GetInt("Height")
	s := codec.Samples{
		Width:            int(w),
		Height:           int(h),
		BitsPerComponent: 8,
		Data:             data,
	}
	if bpc, ok := dict.GetInt("BitsPerComponent"); ok {
		s.BitsPerComponent = int(bpc)
	}

	if mask, _ := dict.GetBool("ImageMask"); mask {
		s.BitsPerComponent = 1
		s.Components = 1
	} else {
		cs := dict.Get("ColorSpace")
		if cs == nil {
			if filter, _ := dict.GetName("Filter"); filter == "CCITTFaxDecode" || filter == "JBIG2Decode" {
				cs = core.Name("DeviceGray")
			} else {
				return nil, fmt.Errorf("image has no /ColorSpace")
			}
		}
		space, err := r.colorSpace(cs, resources, 0)
		if err != nil {
			return nil, err
		}
		s.Components = space.components
		s.Palette = space.palette
		s.Decode = space.decode
	}

	if arr, ok := dict.GetArray("Decode"); ok {
		if nums, ok := arr.Numbers(); ok {
			s.Decode = nums
		}
	}
	return s.Image()
}

type colorSpace struct {
	components int
	palette    []color.RGBA
	decode     []float64
}

// colorSpace maps a /ColorSpace value to its sample layout.
func (r *Reader) colorSpace(obj core.Object, resources core.Dict, depth int) (colorSpace, error) {
	if depth > 8 {
		return colorSpace{}, fmt.Errorf("color space nesting too deep")
	}
	obj, err := objects{r}.Resolve(obj)
	if err != nil {
		return colorSpace{}, err
	}

	switch v := obj.(type) {
	case core.Name:
		switch v {
		case "DeviceGray", "G", "CalGray":
			return colorSpace{components: 1}, nil
		case "DeviceRGB", "RGB", "CalRGB":
			return colorSpace{components: 3}, nil
		case "DeviceCMYK", "CMYK":
			return colorSpace{components: 4}, nil
		}
		// a named resource, as used by inline images
		spaces, _ := r.resolveDict(resources.Get("ColorSpace"))
		if named := spaces.Get(string(v)); named != nil {
			return r.colorSpace(named, resources, depth+1)
		}
		return colorSpace{}, fmt.Errorf("unsupported color space %s", v)

	case core.Array:
		family, _ := v.GetName(0)
		switch family {
		case "CalGray":
			return colorSpace{components: 1}, nil
		case "CalRGB":
			return colorSpace{components: 3}, nil
		case "ICCBased":
			return r.iccSpace(v, resources, depth)
		case "Indexed", "I":
			return r.indexedSpace(v, resources, depth)
		case "Separation":
			// tint 1 is full ink
			return colorSpace{components: 1, decode: []float64{1, 0}}, nil
		}
		if len(v) == 1 {
			return r.colorSpace(v[0], resources, depth+1)
		}
		return colorSpace{}, fmt.Errorf("unsupported color space family %s", family)
	}
	return colorSpace{}, fmt.Errorf("invalid color space %T", obj)
}

func (r *Reader) iccSpace(arr core.Array, resources core.Dict, depth int) (colorSpace, error) {
	profile, err := objects{r}.Resolve(arr.Get(1))
	if err != nil {
		return colorSpace{}, err
	}
	s, ok := profile.(*core.Stream)
	if !ok {
		return colorSpace{}, fmt.Errorf("ICCBased profile is %T", profile)
	}
	if n, ok := s.Dict.GetInt("N"); ok && (n == 1 || n == 3 || n == 4) {
		return colorSpace{components: int(n)}, nil
	}
	if alt := s.Dict.Get("Alternate"); alt != nil {
		return r.colorSpace(alt, resources, depth+1)
	}
	return colorSpace{}, fmt.Errorf("ICCBased profile without usable /N")
}

// indexedSpace handles [/Indexed base hival lookup].
func (r *Reader) indexedSpace(arr core.Array, resources core.Dict, depth int) (colorSpace, error) {
	if len(arr) < 4 {
		return colorSpace{}, fmt.Errorf("indexed color space has %d entries", len(arr))
	}
	base, err := r.colorSpace(arr[1], resources, depth+1)
	if err != nil {
		return colorSpace{}, fmt.Errorf("indexed base: %w", err)
	}
	if base.palette != nil {
		return colorSpace{}, fmt.Errorf("indexed base cannot be indexed")
	}
	hival, ok := core.Number(arr[2])
	if !ok {
		return colorSpace{}, fmt.Errorf("indexed hival is %T", arr[2])
	}

	lookupObj, err := objects{r}.Resolve(arr[3])
	if err != nil {
		return colorSpace{}, err
	}
	var lookup []byte
	switch l := lookupObj.(type) {
	case core.String:
		lookup = []byte(l)
	case *core.Stream:
		if lookup, err = l.Decode(); err != nil {
			return colorSpace{}, fmt.Errorf("indexed lookup: %w", err)
		}
	default:
		return colorSpace{}, fmt.Errorf("indexed lookup is %T", lookupObj)
	}

	pal, err := codec.PaletteFromLookup(lookup, base.components, int(hival))
	if err != nil {
		return colorSpace{}, err
	}
	return colorSpace{components: 1, palette: pal}, nil
}
