package usecases

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
	"github.com/samirrijal/crewmap/internal/pkg/telemetry"
)

// mapPageSize bounds how many records of one kind are placed on a map.
const mapPageSize = 1000

// JobLister lists jobs.
type JobLister interface {
	List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
}

// EventLister lists events.
type EventLister interface {
	List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
}

// AreaResult is the "N items in map area" answer.
type AreaResult struct {
	Count    int                      `json:"count"`
	Features domain.FeatureCollection `json:"features"`
}

// ListingService places listings on the map.
type ListingService struct {
	jobs      JobLister
	events    EventLister
	projector *mapsync.Projector
	tracer    trace.Tracer
}

// ListingOption configures a ListingService.
type ListingOption func(*ListingService)

// WithTracerProvider traces through tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) ListingOption {
	return func(s *ListingService) {
		s.tracer = tp.Tracer(telemetry.TracerName)
	}
}

// NewListingService creates a ListingService. locations resolves records that
// come back without their location included; it may be nil.
func NewListingService(jobs JobLister, events EventLister, locations mapsync.LocationLookup, opts ...ListingOption) *ListingService {
	s := &ListingService{
		jobs:      jobs,
		events:    events,
		projector: mapsync.NewProjector(locations),
		tracer:    telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Features returns every placeable record of kind as map features.
func (s *ListingService) Features(ctx context.Context, kind domain.FeatureKind) (domain.FeatureCollection, error) {
	ctx, span := s.tracer.Start(ctx, "listing.Features",
		trace.WithAttributes(attribute.String("crewmap.kind", string(kind))))
	defer span.End()

	var records []domain.Placeable
	switch kind {
	case domain.FeatureKindJob:
		jobs, err := s.jobs.List(ctx, domain.JobFilter{Include: []string{"location"}, Limit: mapPageSize})
		if err != nil {
			return nil, spanError(span, fmt.Errorf("list jobs: %w", err))
		}
		records = mapsync.Jobs(jobs)
	case domain.FeatureKindEvent:
		events, err := s.events.List(ctx, domain.EventFilter{Include: []string{"location"}, Limit: mapPageSize})
		if err != nil {
			return nil, spanError(span, fmt.Errorf("list events: %w", err))
		}
		records = mapsync.Events(events)
	default:
		return nil, spanError(span, fmt.Errorf("unknown feature kind %q", kind))
	}

	fc := s.projector.Project(ctx, records)
	span.SetAttributes(
		attribute.Int("crewmap.records", len(records)),
		attribute.Int("crewmap.features", len(fc)),
	)
	return fc, nil
}

// InArea returns the features of kind inside box.
func (s *ListingService) InArea(ctx context.Context, kind domain.FeatureKind, box domain.BoundingBox) (AreaResult, error) {
	ctx, span := s.tracer.Start(ctx, "listing.InArea",
		trace.WithAttributes(attribute.String("crewmap.kind", string(kind))))
	defer span.End()

	fc, err := s.Features(ctx, kind)
	if err != nil {
		return AreaResult{}, err
	}
	in := mapsync.Filter(fc, box)
	span.SetAttributes(attribute.Int("crewmap.in_area", len(in)))
	return AreaResult{Count: len(in), Features: in}, nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
