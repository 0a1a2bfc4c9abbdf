package mapsync

import "github.com/samirrijal/crewmap/internal/core/domain"

// Event is something that happened on a map or its sidebar.
type Event interface {
	mapEvent()
}

// ClickTarget is what a map click landed on.
type ClickTarget string

const (
	TargetMarker     ClickTarget = "marker"
	TargetPopup      ClickTarget = "popup"
	TargetBackground ClickTarget = "background"
)

// FeaturesChanged replaces the session's feature collection.
type FeaturesChanged struct {
	Features domain.FeatureCollection
}

// Loaded is the map's one-shot load signal with its initial viewport.
type Loaded struct {
	Bounds domain.BoundingBox
}

// MoveEnded reports the viewport after a pan.
type MoveEnded struct {
	Bounds domain.BoundingBox
}

// ZoomEnded reports the viewport after a zoom.
type ZoomEnded struct {
	Bounds domain.BoundingBox
}

// Clicked is a click on the map. FeatureID is set for marker clicks.
type Clicked struct {
	Target    ClickTarget
	FeatureID string
}

// Hovered is a sidebar row pointer-enter (FeatureID set) or pointer-leave ("").
type Hovered struct {
	FeatureID string
}

// Selected selects a feature from outside the map, e.g. a sidebar row; "" clears.
type Selected struct {
	FeatureID string
}

func (FeaturesChanged) mapEvent() {}
func (Loaded) mapEvent()          {}
func (MoveEnded) mapEvent()       {}
func (ZoomEnded) mapEvent()       {}
func (Clicked) mapEvent()         {}
func (Hovered) mapEvent()         {}
func (Selected) mapEvent()        {}
