package filters

import "fmt"

// Unpredict reverses the Predictor named in params. Predictor 1 (or none)
// returns data unchanged, 2 is the TIFF horizontal predictor and 10-15 are the
// PNG row filters. It is shared by FlateDecode and LZWDecode.
func Unpredict(data []byte, params Params) ([]byte, error) {
	predictor := getIntParam(params, "Predictor", 1)
	switch {
	case predictor <= 1:
		return data, nil
	case predictor == 2:
		return unpredictTIFF(data, params)
	case predictor >= 10 && predictor <= 15:
		return unpredictPNG(data, params)
	default:
		return nil, fmt.Errorf("unsupported predictor: %d", predictor)
	}
}

type rowLayout struct {
	bytesPerPixel int
	rowBytes      int
}

func layoutFor(params Params) (rowLayout, error) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)
	if columns <= 0 || colors <= 0 {
		return rowLayout{}, fmt.Errorf("invalid predictor layout: columns=%d colors=%d", columns, colors)
	}
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return rowLayout{}, fmt.Errorf("invalid BitsPerComponent %d", bpc)
	}
	bpp := (colors*bpc + 7) / 8
	return rowLayout{
		bytesPerPixel: bpp,
		rowBytes:      (columns*colors*bpc + 7) / 8,
	}, nil
}

// unpredictTIFF applies TIFF Predictor 2 for 8-bit samples: each sample is
// stored as the difference from the sample one pixel to its left.
func unpredictTIFF(data []byte, params Params) ([]byte, error) {
	if bpc := getIntParam(params, "BitsPerComponent", 8); bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor only supports 8 bits per component, got %d", bpc)
	}
	lay, err := layoutFor(params)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(data))
	copy(out, data)
	for start := 0; start+lay.rowBytes <= len(out); start += lay.rowBytes {
		row := out[start : start+lay.rowBytes]
		for i := lay.bytesPerPixel; i < len(row); i++ {
			row[i] += row[i-lay.bytesPerPixel]
		}
	}
	return out, nil
}

// unpredictPNG undoes PNG row filtering. Every row carries a leading filter
// type byte (0 None, 1 Sub, 2 Up, 3 Average, 4 Paeth). A short final row is
// decoded as far as it goes.
func unpredictPNG(data []byte, params Params) ([]byte, error) {
	lay, err := layoutFor(params)
	if err != nil {
		return nil, err
	}

	stride := lay.rowBytes + 1
	rows := (len(data) + stride - 1) / stride
	out := make([]byte, 0, rows*lay.rowBytes)
	prev := make([]byte, lay.rowBytes)
	cur := make([]byte, lay.rowBytes)

	for r := 0; r < rows; r++ {
		start := r * stride
		end := start + stride
		if end > len(data) {
			end = len(data)
		}
		if end-start < 2 {
			break
		}
		filter := data[start]
		src := data[start+1 : end]
		n := len(src)

		for i := 0; i < n; i++ {
			var left, upLeft byte
			if i >= lay.bytesPerPixel {
				left = cur[i-lay.bytesPerPixel]
				upLeft = prev[i-lay.bytesPerPixel]
			}
			up := prev[i]

			switch filter {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("row %d: unknown PNG filter type %d", r, filter)
			}
		}

		out = append(out, cur[:n]...)
		prev, cur = cur, prev
	}
	return out, nil
}

// paeth implements the Paeth predictor from the PNG specification.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
