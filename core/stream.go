package core

import (
	"fmt"

	"github.com/tsawler/pagevisuals/internal/filters"
)

// Image codec filters. Their payloads are complete image files (or
// codestreams) and are handed to an image decoder, not undone here.
var imageCodecs = map[string]string{
	"DCTDecode":   "DCTDecode",
	"DCT":         "DCTDecode",
	"JPXDecode":   "JPXDecode",
	"JBIG2Decode": "JBIG2Decode",
}

// Filters returns the stream's filter names with their DecodeParms, one
// entry per filter.
func (s *Stream) Filters() ([]string, []Dict, error) {
	var names []string
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return nil, nil, nil
	case Name:
		names = []string{string(f)}
	case Array:
		for i, item := range f {
			n, ok := item.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("filter %d is not a name: %T", i, item)
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("invalid Filter type: %T", f)
	}

	params := make([]Dict, len(names))
	switch dp := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		params[0] = dp
	case Array:
		for i := range names {
			if d, ok := dp.Get(i).(Dict); ok {
				params[i] = d
			}
		}
	}
	return names, params, nil
}

// Decode applies the whole filter chain. The result is cached on the stream.
// Image codec filters are returned undecoded.
func (s *Stream) Decode() ([]byte, error) {
	if s.decoded != nil {
		return s.decoded, nil
	}
	data, _, _, err := s.DecodeUntilImage()
	if err != nil {
		return nil, err
	}
	s.decoded = data
	return data, nil
}

// DecodeUntilImage applies the filter chain up to the first image codec
// filter and reports that codec's canonical name ("DCTDecode", "JPXDecode",
// "JBIG2Decode") and DecodeParms. codec is "" when the chain ends in raw
// samples.
func (s *Stream) DecodeUntilImage() (data []byte, codec string, params Dict, err error) {
	names, parms, err := s.Filters()
	if err != nil {
		return nil, "", nil, err
	}

	data = s.Data
	for i, name := range names {
		if c, ok := imageCodecs[name]; ok {
			return data, c, parms[i], nil
		}
		data, err = decodeWithFilter(data, name, parms[i])
		if err != nil {
			return nil, "", nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
	}
	return data, "", nil, nil
}

func decodeWithFilter(data []byte, name string, params Dict) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, dictToParams(params))
	case "LZWDecode", "LZW":
		return filters.LZWDecode(data, dictToParams(params))
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, dictToParams(params))
	case "Crypt":
		return nil, fmt.Errorf("encrypted streams are not supported")
	}
	return nil, fmt.Errorf("unknown filter: %s", name)
}

// dictToParams converts DecodeParms to filter parameters with Go values.
func dictToParams(dict Dict) filters.Params {
	if dict == nil {
		return nil
	}
	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch obj := v.(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case Name:
			params[k] = string(obj)
		case String:
			params[k] = string(obj)
		default:
			params[k] = v
		}
	}
	return params
}
