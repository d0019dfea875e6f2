// Package spatial indexes stored points in an R-tree for bounding box and
// nearest neighbour lookups. Coordinates are treated as planar degrees.
package spatial

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/lewtec/mappoints/internal/domain"
	"github.com/paulmach/orb"
)

const (
	tolerance   = 1e-9
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialPoint wraps a point to implement rtreego.Spatial
type spatialPoint struct {
	*domain.Point
	rect *rtreego.Rect
}

func (sp *spatialPoint) Bounds() *rtreego.Rect {
	return sp.rect
}

// Index is an immutable R-tree over a snapshot of points.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// New builds an index over points, keyed by (longitude, latitude).
func New(points []*domain.Point) *Index {
	index := &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for _, point := range points {
		if point == nil {
			continue
		}
		p := rtreego.Point{point.Longitude, point.Latitude}
		index.tree.Insert(&spatialPoint{Point: point, rect: p.ToRect(tolerance)})
		index.size++
	}
	return index
}

func (ix *Index) Len() int {
	return ix.size
}

// InBounds returns the points inside b, ordered by ID.
func (ix *Index) InBounds(b orb.Bound) []*domain.Point {
	if ix.size == 0 {
		return []*domain.Point{}
	}
	width := b.Max.Lon() - b.Min.Lon()
	height := b.Max.Lat() - b.Min.Lat()
	if width < 0 || height < 0 {
		return []*domain.Point{}
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{b.Min.Lon() - tolerance, b.Min.Lat() - tolerance},
		[]float64{width + 2*tolerance, height + 2*tolerance},
	)
	if err != nil {
		return []*domain.Point{}
	}

	result := []*domain.Point{}
	for _, item := range ix.tree.SearchIntersect(rect) {
		sp := item.(*spatialPoint)
		if b.Contains(orb.Point{sp.Longitude, sp.Latitude}) {
			result = append(result, sp.Point)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Nearest returns up to k points closest to (latitude, longitude), nearest first.
func (ix *Index) Nearest(latitude, longitude float64, k int) []*domain.Point {
	if k <= 0 || ix.size == 0 {
		return []*domain.Point{}
	}
	if k > ix.size {
		k = ix.size
	}
	result := make([]*domain.Point, 0, k)
	for _, item := range ix.tree.NearestNeighbors(k, rtreego.Point{longitude, latitude}) {
		if item == nil {
			continue
		}
		result = append(result, item.(*spatialPoint).Point)
	}
	return result
}
