package boundary

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// World is the full longitude/latitude extent the mask is cut from.
var World = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// ComputeOutsideMask returns World minus the boundary: the world rectangle as
// exterior ring with the part of the boundary inside World as its hole.
// Self intersecting boundaries are passed to the clipper as they are.
func ComputeOutsideMask(b *Boundary) (orb.Polygon, error) {
	if b == nil || len(b.Polygon) == 0 || len(b.Polygon[0]) < 4 {
		return nil, errors.New("empty boundary")
	}

	world := World.ToRing()
	if world.Orientation() != orb.CCW {
		world.Reverse()
	}

	clipped := clip.Polygon(World, orb.Polygon{b.Polygon[0].Clone()})
	if len(clipped) == 0 || len(clipped[0]) < 4 || planar.Area(clipped[0]) == 0 {
		// nothing of the boundary lies inside the world
		return orb.Polygon{world}, nil
	}

	hole := clipped[0]
	if hole.Orientation() != orb.CW {
		hole.Reverse()
	}
	return orb.Polygon{world, hole}, nil
}

// Feature kinds used in MaskFeatureCollection.
const (
	KindBoundary = "boundary"
	KindOutside  = "outside"
)

// MaskFeatureCollection returns the boundary and its outside mask as GeoJSON features.
func MaskFeatureCollection(b *Boundary) (*geojson.FeatureCollection, error) {
	mask, err := ComputeOutsideMask(b)
	if err != nil {
		return nil, err
	}
	west, south, east, north := b.Bounds()

	fc := geojson.NewFeatureCollection()

	boundary := geojson.NewFeature(b.Polygon)
	boundary.Properties["kind"] = KindBoundary
	boundary.Properties["bounds"] = []float64{west, south, east, north}
	if b.Source != "" {
		boundary.Properties["source"] = b.Source
	}
	fc.Append(boundary)

	outside := geojson.NewFeature(mask)
	outside.Properties["kind"] = KindOutside
	fc.Append(outside)

	return fc, nil
}

// WriteMask writes MaskFeatureCollection of b to path.
func WriteMask(b *Boundary, path string) error {
	fc, err := MaskFeatureCollection(b)
	if err != nil {
		return err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("while encoding mask: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
