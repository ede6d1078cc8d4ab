package geo

import (
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

type indexEntry struct {
	geom.Polygonal
	name string
}

// Index answers "which province contains this point" using an r-tree over
// the province geometries, so lookups stay cheap for large record sets.
type Index struct {
	tree *rtree.Rtree
}

// NewIndex builds the r-tree from the given provinces.
func NewIndex(provinces []Province) *Index {
	tree := rtree.NewTree(25, 50)
	for _, p := range provinces {
		tree.Insert(&indexEntry{Polygonal: p.Geometry, name: p.Name})
	}
	return &Index{tree: tree}
}

// Locate returns the name of the province containing the point, if any.
// Points on a shared border resolve to whichever candidate the index returns
// first; callers only need the answer to be some containing province.
func (ix *Index) Locate(lat, lon float64) (string, bool) {
	pt := geom.Point{X: lon, Y: lat}
	for _, item := range ix.tree.SearchIntersect(pt.Bounds()) {
		e := item.(*indexEntry)
		if pt.Within(e.Polygonal) != geom.Outside {
			return e.name, true
		}
	}
	return "", false
}
