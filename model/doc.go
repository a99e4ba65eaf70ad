// Package model defines the value types shared by the extraction pipeline.
//
// # Geometry
//
//   - [Rect] - axis-aligned rectangle in page points with [Rect.Expand],
//     [Rect.Union], [Rect.Intersects] and the [IoU] measure
//   - [Point] - 2D point
//   - [Matrix] - 2D affine transformation matrix
//
// # Artifacts
//
// A document backend reports [ImageCandidate] and [VectorDrawing] values per
// page. Detection turns drawings into [VectorRegion] values, and the final
// products are [EmbeddedImage] and [VectorClip], each carrying a [Blob]:
//
//	blob := model.PNG(data)
//	uri := blob.DataURI() // data:image/png;base64,...
//
// All types are plain values and safe to copy.
package model
