package mapsync

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// Filter returns the features whose point lies inside box, edges included, in
// their original order. A box whose south-west longitude exceeds its north-east
// longitude (one crossing the antimeridian) matches nothing.
func Filter(fc domain.FeatureCollection, box domain.BoundingBox) domain.FeatureCollection {
	b := Bound(box)
	out := make(domain.FeatureCollection, 0, len(fc))
	for _, f := range fc {
		if b.Contains(Point(f.Point)) {
			out = append(out, f)
		}
	}
	return out
}

// Bound converts a viewport box into an orb.Bound.
func Bound(box domain.BoundingBox) orb.Bound {
	return orb.Bound{
		Min: orb.Point{box.SouthWest.Lon, box.SouthWest.Lat},
		Max: orb.Point{box.NorthEast.Lon, box.NorthEast.Lat},
	}
}

// Point converts a GeoPoint into an orb.Point (lon, lat).
func Point(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
