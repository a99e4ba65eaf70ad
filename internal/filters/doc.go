// Package filters implements the PDF stream decoding filters.
//
// Each filter takes the encoded bytes and, where the filter has any, the
// stream's DecodeParms as a Params map:
//
//	out, err := filters.FlateDecode(data, filters.Params{"Predictor": 12, "Columns": 5})
//
// Supported: FlateDecode and LZWDecode (both with TIFF predictor 2 and PNG
// predictors 10-15), ASCIIHexDecode, ASCII85Decode, RunLengthDecode and
// CCITTFaxDecode. Image codecs such as DCTDecode and JPXDecode are not
// filters in this sense; callers keep their payloads intact.
package filters
