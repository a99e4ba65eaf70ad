package filters

import "fmt"

// RunLengthDecode decodes PackBits-style run-length data. A length byte n in
// 0..127 copies the next n+1 bytes, 129..255 repeats the next byte 257-n
// times and 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			end := i + n + 1
			if end > len(data) {
				return nil, fmt.Errorf("RunLengthDecode: literal run of %d bytes overruns data at offset %d", n+1, i)
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("RunLengthDecode: repeat run missing byte at offset %d", i)
			}
			for k := 0; k < 257-n; k++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
