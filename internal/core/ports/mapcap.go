package ports

import (
	"context"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// MarkerHandle is the map capability's ownership token for one rendered marker.
type MarkerHandle interface {
	MarkerID() string
}

// MarkerContent fills the content slot the map keeps for each marker.
type MarkerContent struct {
	Kind     domain.FeatureKind `json:"kind"`
	Title    string             `json:"title"`
	Category string             `json:"category,omitempty"`
	Hovered  bool               `json:"hovered"`
	Selected bool               `json:"selected"`
}

// MapCapability is an interactive map that can place markers and move its viewport.
// Calls are fire-and-forget into the map's own animation; errors only report that a
// command could not be delivered.
type MapCapability interface {
	// Ready reports whether the map has emitted its load event.
	Ready() bool
	CreateMarker(ctx context.Context, point domain.GeoPoint) (MarkerHandle, error)
	DestroyMarker(ctx context.Context, h MarkerHandle) error
	SetPopup(ctx context.Context, h MarkerHandle, content MarkerContent) error
	FlyTo(ctx context.Context, point domain.GeoPoint, zoom float64, duration time.Duration) error
	// Bounds returns the last reported viewport, if any.
	Bounds() (domain.BoundingBox, bool)
}
