// Package mapsync keeps a map, its markers and the listing sidebar in agreement.
//
// Records are projected into point features (Projector), narrowed to the visible
// viewport for the sidebar (Filter), rendered as one marker per feature id
// (MarkerManager) and cross-highlighted through a shared hover/selection state
// (Selection). A Session ties the four together for one connected map and applies
// map and sidebar events strictly one at a time.
package mapsync
