package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether both coordinates are finite and within WGS 84 range.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// BoundingBox is the rectangular extent currently visible on a map.
type BoundingBox struct {
	NorthEast GeoPoint `json:"north_east"`
	SouthWest GeoPoint `json:"south_west"`
}

// Valid reports whether both corners are valid points and the box is not inverted in latitude.
// Longitude inversion is allowed here; such boxes simply match nothing.
func (b BoundingBox) Valid() bool {
	return b.NorthEast.Valid() && b.SouthWest.Valid() && b.SouthWest.Lat <= b.NorthEast.Lat
}
