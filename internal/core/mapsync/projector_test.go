package mapsync_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
)

type lookupFn func(ctx context.Context, ids []string) (map[string]*domain.Location, error)

func (f lookupFn) Lookup(ctx context.Context, ids []string) (map[string]*domain.Location, error) {
	return f(ctx, ids)
}

func loc(id string, lon, lat *float64) *domain.Location {
	return &domain.Location{ID: id, Name: id, Longitude: lon, Latitude: lat}
}

func TestProject_SkipsMalformedKeepsOrder(t *testing.T) {
	jobs := []domain.Job{
		{ID: "1", Title: "Deckhand", Location: loc("a", ptr(12.59), ptr(55.68))},
		{ID: "2", Title: "No location"},
		{ID: "3", Title: "Null lat", Location: loc("b", ptr(12.6), nil)},
		{ID: "4", Title: "Out of range", Location: loc("c", ptr(181), ptr(10))},
		{ID: "5", Title: "NaN", Location: loc("d", ptr(math.NaN()), ptr(10))},
		{ID: "", Title: "No id", Location: loc("e", ptr(1), ptr(1))},
		{ID: "7", Title: "Engineer", Category: "engine", Location: loc("f", ptr(-70.1), ptr(-33.4))},
	}

	fc := mapsync.NewProjector(nil).Project(context.Background(), mapsync.Jobs(jobs))

	require.Len(t, fc, 2)
	assert.Equal(t, "1", fc[0].ID)
	assert.Equal(t, "7", fc[1].ID)
	assert.Equal(t, domain.FeatureKindJob, fc[1].Kind)
	assert.Equal(t, "engine", fc[1].Category)
	assert.Equal(t, domain.GeoPoint{Lon: -70.1, Lat: -33.4}, fc[1].Point)
}

func TestProject_ResolvesReferencesInOneBatch(t *testing.T) {
	var calls int
	var asked []string
	lookup := lookupFn(func(_ context.Context, ids []string) (map[string]*domain.Location, error) {
		calls++
		asked = ids
		return map[string]*domain.Location{
			"port-a": loc("port-a", ptr(4.3), ptr(51.9)),
		}, nil
	})

	events := []domain.Event{
		{ID: "e1", Title: "Crew meetup", LocationID: "port-a"},
		{ID: "e2", Title: "Regatta", LocationID: "port-a"},
		{ID: "e3", Title: "Missing relation", LocationID: "port-x"},
	}

	fc := mapsync.NewProjector(lookup).Project(context.Background(), mapsync.Events(events))

	assert.Equal(t, 1, calls)
	assert.ElementsMatch(t, []string{"port-a", "port-x"}, asked)
	require.Len(t, fc, 2)
	assert.Equal(t, "e1", fc[0].ID)
	assert.Equal(t, "e2", fc[1].ID)
	assert.Equal(t, domain.FeatureKindEvent, fc[0].Kind)
}

func TestProject_LookupErrorSkipsReferencedRecords(t *testing.T) {
	lookup := lookupFn(func(context.Context, []string) (map[string]*domain.Location, error) {
		return nil, errors.New("db down")
	})
	jobs := []domain.Job{
		{ID: "1", LocationID: "port-a"},
		{ID: "2", Location: loc("inline", ptr(1), ptr(2))},
	}

	fc := mapsync.NewProjector(lookup).Project(context.Background(), mapsync.Jobs(jobs))

	require.Len(t, fc, 1)
	assert.Equal(t, "2", fc[0].ID)
}

func TestProject_EmptyInput(t *testing.T) {
	fc := mapsync.NewProjector(nil).Project(context.Background(), nil)
	assert.Empty(t, fc)
}
