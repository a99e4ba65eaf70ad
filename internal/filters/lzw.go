package filters

import (
	"bytes"
	stdlzw "compress/lzw"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// LZWDecode decodes LZW data. PDF's default EarlyChange=1 matches the TIFF
// variant of the algorithm, where the code width grows one code early;
// EarlyChange=0 is the classic form. Predictors apply as for FlateDecode.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	var rc io.ReadCloser
	if getIntParam(params, "EarlyChange", 1) == 0 {
		rc = stdlzw.NewReader(bytes.NewReader(data), stdlzw.MSB, 8)
	} else {
		rc = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil && !(errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0) {
		return nil, fmt.Errorf("LZWDecode: %w", err)
	}
	return Unpredict(out, params)
}
