// Package core is the PDF object layer: tokenizer, object model, object
// parser, stream filter dispatch and cross-reference loading.
//
// Everything works on the complete document held in memory. A reader
// typically loads the cross-reference data once and then parses objects at
// the recorded offsets:
//
//	xref, err := core.NewXRefParser(data).Load()
//	if err != nil {
//		xref, err = core.Reconstruct(data)
//	}
//	p := core.NewParser(data)
//	p.Seek(int(xref.Entries[5].Offset))
//	obj, err := p.ParseIndirectObject()
//
// Supported are classic tables with incremental updates, cross-reference
// streams, hybrid files, object streams and the filters in internal/filters.
// Image codec filters (DCTDecode, JPXDecode, JBIG2Decode) are reported by
// [Stream.DecodeUntilImage] and left for an image decoder.
package core
