package mapsync

import (
	"context"
	"log/slog"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/pkg/metrics"
)

// Reasons a record is left off the map.
const (
	skipMissingID     = "missing_id"
	skipNoLocation    = "no_location"
	skipUnresolved    = "unresolved_relation"
	skipInvalidCoords = "invalid_coordinates"
)

// LocationLookup resolves location references in bulk. Missing ids are simply
// absent from the returned map.
type LocationLookup interface {
	Lookup(ctx context.Context, ids []string) (map[string]*domain.Location, error)
}

// Projector turns records into a FeatureCollection.
type Projector struct {
	locations LocationLookup
}

// NewProjector creates a Projector. locations may be nil when every record is
// loaded with its location included.
func NewProjector(locations LocationLookup) *Projector {
	return &Projector{locations: locations}
}

// Project converts records into point features, keeping input order. Records
// whose coordinates cannot be resolved are skipped; the batch never fails.
func (p *Projector) Project(ctx context.Context, records []domain.Placeable) domain.FeatureCollection {
	placements := make([]domain.Placement, 0, len(records))
	var refs []string
	seen := make(map[string]struct{})
	for _, r := range records {
		if r == nil {
			continue
		}
		pl := r.Placement()
		placements = append(placements, pl)
		if pl.Location == nil && pl.LocationRef != "" {
			if _, ok := seen[pl.LocationRef]; !ok {
				seen[pl.LocationRef] = struct{}{}
				refs = append(refs, pl.LocationRef)
			}
		}
	}

	resolved := p.resolve(ctx, refs)

	out := make(domain.FeatureCollection, 0, len(placements))
	for _, pl := range placements {
		pt, reason := locate(pl, resolved)
		if reason != "" {
			slog.DebugContext(ctx, "record left off map",
				"kind", pl.Kind, "id", pl.ID, "reason", reason)
			metrics.RecordsSkipped.WithLabelValues(string(pl.Kind), reason).Inc()
			continue
		}
		out = append(out, domain.Feature{
			ID:       pl.ID,
			Kind:     pl.Kind,
			Title:    pl.Title,
			Category: pl.Category,
			Point:    pt,
		})
		metrics.FeaturesProjected.WithLabelValues(string(pl.Kind)).Inc()
	}
	return out
}

func (p *Projector) resolve(ctx context.Context, refs []string) map[string]*domain.Location {
	if len(refs) == 0 || p.locations == nil {
		return nil
	}
	locs, err := p.locations.Lookup(ctx, refs)
	if err != nil {
		// Every record depending on these refs is skipped as unresolved.
		slog.WarnContext(ctx, "location lookup failed", "refs", len(refs), "error", err)
		return nil
	}
	return locs
}

func locate(pl domain.Placement, resolved map[string]*domain.Location) (domain.GeoPoint, string) {
	if pl.ID == "" {
		return domain.GeoPoint{}, skipMissingID
	}
	loc := pl.Location
	if loc == nil {
		if pl.LocationRef == "" {
			return domain.GeoPoint{}, skipNoLocation
		}
		loc = resolved[pl.LocationRef]
		if loc == nil {
			return domain.GeoPoint{}, skipUnresolved
		}
	}
	pt, ok := loc.Point()
	if !ok {
		return domain.GeoPoint{}, skipInvalidCoords
	}
	return pt, ""
}

// Jobs adapts a job slice for Project.
func Jobs(jobs []domain.Job) []domain.Placeable {
	out := make([]domain.Placeable, len(jobs))
	for i := range jobs {
		out[i] = &jobs[i]
	}
	return out
}

// Events adapts an event slice for Project.
func Events(events []domain.Event) []domain.Placeable {
	out := make([]domain.Placeable, len(events))
	for i := range events {
		out[i] = &events[i]
	}
	return out
}
