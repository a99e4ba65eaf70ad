// Package extract selects the visual artifacts of a paged document: the
// largest embedded raster images and rasterized clips of clustered vector
// drawings, both bounded by per-page and whole-document caps.
//
// The engine talks to a document through [Backend] and to image data
// through [Codec]. reader.Reader and codec.Codec are the concrete
// implementations used by the command line tool.
//
//	eng := extract.New(r, codec.New(), extract.DefaultConfig())
//	res, err := eng.Run(ctx)
//	if err != nil {
//	    // only an unreadable document ends up here
//	}
//	for _, img := range res.Images {
//	    fmt.Println(img.Page, img.Blob.MIME)
//	}
//
// Pages are processed in document order and the caps are enforced in that
// order, so the result is deterministic for a given document. Items that
// fail individually are dropped and reported as [Outcome] records on the
// [Result]; they never fail the run.
package extract
