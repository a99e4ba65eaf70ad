// Package pages flattens the PDF page tree into an indexed page list.
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	page, err := tree.GetPage(0) // 0-based
//	box := page.CropBox()
//
// Resources, MediaBox, CropBox and Rotate are inherited through every
// ancestor, the nearest definition winning. Cycles in /Kids are skipped.
package pages
