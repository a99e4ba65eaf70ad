package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/pagevisuals/model"
)

// DefaultJPEGQuality is the quality used when a resized JPEG is re-encoded.
const DefaultJPEGQuality = 85

// Limits on decoded images.
const (
	MaxSide   = 32768
	MaxPixels = 64 << 20
)

var (
	// ErrTooLarge is returned for images beyond MaxSide or MaxPixels.
	ErrTooLarge = errors.New("image dimensions exceed limits")

	// ErrBadSize is returned for non-positive target sizes.
	ErrBadSize = errors.New("invalid target size")
)

// Codec decodes, resizes and re-encodes raster images. The zero value is
// not usable; call New.
type Codec struct {
	// Scaler used by Resize
	Scaler draw.Scaler

	pngEncoder png.Encoder
}

// New returns a codec that downsamples with Catmull-Rom and writes PNGs with
// best compression.
func New() *Codec {
	return &Codec{
		Scaler:     draw.CatmullRom,
		pngEncoder: png.Encoder{CompressionLevel: png.BestCompression},
	}
}

// DecodeRaster reports the dimensions and format name ("png", "jpeg", "gif",
// "bmp", "tiff", "webp") without decoding pixels.
func (c *Codec) DecodeRaster(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode config: %w", err)
	}
	if err := checkSize(cfg.Width, cfg.Height); err != nil {
		return 0, 0, "", err
	}
	return cfg.Width, cfg.Height, format, nil
}

// Decode fully decodes data after checking its dimensions.
func (c *Codec) Decode(data []byte) (image.Image, string, error) {
	if _, _, _, err := c.DecodeRaster(data); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", format, err)
	}
	return img, format, nil
}

// Resize decodes data and scales it to width x height. Transparency is
// flattened onto white. The result is PNG encoded.
func (c *Codec) Resize(data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, width, height)
	}
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	src, _, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	c.Scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return c.EncodePNG(dst)
}

// Reencode converts data to the target encoding. JPEG output uses quality,
// or DefaultJPEGQuality when quality is out of range. Data already in the
// target encoding is returned unchanged.
func (c *Codec) Reencode(data []byte, target model.Encoding, quality int) ([]byte, error) {
	img, format, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	switch target {
	case model.EncodingPNG:
		if format == "png" {
			return data, nil
		}
		return c.EncodePNG(img)
	case model.EncodingJPEG:
		if format == "jpeg" {
			return data, nil
		}
		return EncodeJPEG(img, quality)
	}
	return nil, fmt.Errorf("cannot encode to %s", target)
}

// EncodePNG encodes img as PNG.
func (c *Codec) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pngEncoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG encodes img as JPEG after flattening transparency onto white.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Opaque(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Opaque returns img composited onto white. Images that cannot carry
// transparency are returned as is.
func Opaque(img image.Image) image.Image {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.YCbCrModel, color.CMYKModel:
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

func checkSize(w, h int) error {
	if w > MaxSide || h > MaxSide || w*h > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return nil
}
