// Package merge clusters rectangles that touch or overlap into covering
// bounding boxes.
//
// Two rectangles are adjacent when they intersect (touching counts) or their
// intersection-over-union reaches the threshold. Clusters are the transitive
// closure of adjacency; each cluster is replaced by the bounding-box union of
// its members. Because a union can grow into a rectangle it did not touch
// before, clustering repeats on the unions until nothing changes:
//
//	regions := merge.Rects(padded, merge.DefaultThreshold)
//
// The result is a fixed point: merging it again returns the same set.
package merge

import (
	"github.com/tidwall/rtree"

	"github.com/tsawler/pagevisuals/model"
)

// DefaultThreshold is the IoU at or above which two rectangles merge even if
// the intersection test alone would not join them.
const DefaultThreshold = 0.15

// Adjacent reports whether a and b belong in the same cluster.
func Adjacent(a, b model.Rect, threshold float64) bool {
	return a.Intersects(b) || model.IoU(a, b) >= threshold
}

// Rects merges rects until no two outputs are adjacent. The input slice is
// not modified. Output order follows the lowest input index in each cluster.
func Rects(rects []model.Rect, threshold float64) []model.Rect {
	out := append([]model.Rect(nil), rects...)
	for len(out) > 1 {
		next := clusterOnce(out, threshold)
		if len(next) == len(out) {
			break
		}
		out = next
	}
	return out
}

// clusterOnce runs one round of union-find over rects and returns the
// bounding box of every cluster.
func clusterOnce(rects []model.Rect, threshold float64) []model.Rect {
	uf := newUnionFind(len(rects))

	if threshold <= 0 {
		// every pair scores IoU >= 0
		for i := 1; i < len(rects); i++ {
			uf.union(0, i)
		}
	} else {
		// IoU > 0 implies intersection, so the index only needs to find
		// intersecting neighbours.
		var tr rtree.RTreeG[int]
		for i, r := range rects {
			tr.Insert([2]float64{r.X0, r.Y0}, [2]float64{r.X1, r.Y1}, i)
		}
		for i, r := range rects {
			tr.Search([2]float64{r.X0, r.Y0}, [2]float64{r.X1, r.Y1},
				func(_, _ [2]float64, j int) bool {
					if j > i && Adjacent(r, rects[j], threshold) {
						uf.union(i, j)
					}
					return true
				})
		}
	}

	slot := make(map[int]int, len(rects))
	var out []model.Rect
	for i, r := range rects {
		root := uf.find(i)
		if k, ok := slot[root]; ok {
			out[k] = out[k].Union(r)
			continue
		}
		slot[root] = len(out)
		out = append(out, r)
	}
	return out
}
