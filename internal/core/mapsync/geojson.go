package mapsync

import (
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// ToGeoJSON renders features as a GeoJSON FeatureCollection of points.
func ToGeoJSON(fc domain.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range fc {
		gf := geojson.NewFeature(Point(f.Point))
		gf.ID = f.ID
		gf.Properties["kind"] = string(f.Kind)
		gf.Properties["title"] = f.Title
		if f.Category != "" {
			gf.Properties["category"] = f.Category
		}
		out.Append(gf)
	}
	return out
}
