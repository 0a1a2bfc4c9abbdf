package domain_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func TestGeoPointValid(t *testing.T) {
	tests := []struct {
		name string
		p    domain.GeoPoint
		want bool
	}{
		{"origin", domain.GeoPoint{}, true},
		{"corner", domain.GeoPoint{Lon: 180, Lat: -90}, true},
		{"lon out of range", domain.GeoPoint{Lon: 180.01, Lat: 0}, false},
		{"lat out of range", domain.GeoPoint{Lon: 0, Lat: 91}, false},
		{"nan", domain.GeoPoint{Lon: math.NaN(), Lat: 0}, false},
		{"inf", domain.GeoPoint{Lon: 0, Lat: math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Valid())
		})
	}
}

func TestBoundingBoxValid(t *testing.T) {
	ok := domain.BoundingBox{
		NorthEast: domain.GeoPoint{Lat: 44, Lon: 8},
		SouthWest: domain.GeoPoint{Lat: 43, Lon: 7},
	}
	assert.True(t, ok.Valid())

	inverted := domain.BoundingBox{NorthEast: ok.SouthWest, SouthWest: ok.NorthEast}
	assert.False(t, inverted.Valid())

	// Crossing the antimeridian is accepted but matches nothing downstream.
	wrapped := domain.BoundingBox{
		NorthEast: domain.GeoPoint{Lat: 10, Lon: -170},
		SouthWest: domain.GeoPoint{Lat: 0, Lon: 170},
	}
	assert.True(t, wrapped.Valid())
}

func TestLocationPoint(t *testing.T) {
	var nilLoc *domain.Location
	_, ok := nilLoc.Point()
	assert.False(t, ok)

	_, ok = (&domain.Location{Name: "Antibes", Longitude: ptr(7.12)}).Point()
	assert.False(t, ok, "half a coordinate is not placeable")

	p, ok := (&domain.Location{Longitude: ptr(7.12), Latitude: ptr(43.58)}).Point()
	require.True(t, ok)
	assert.Equal(t, domain.GeoPoint{Lon: 7.12, Lat: 43.58}, p)

	_, ok = (&domain.Location{Longitude: ptr(7.12), Latitude: ptr(143.0)}).Point()
	assert.False(t, ok)
}

func TestParseFeatureKind(t *testing.T) {
	for in, want := range map[string]domain.FeatureKind{
		"job": domain.FeatureKindJob, "jobs": domain.FeatureKindJob,
		"event": domain.FeatureKindEvent, "events": domain.FeatureKindEvent,
	} {
		got, ok := domain.ParseFeatureKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := domain.ParseFeatureKind("post")
	assert.False(t, ok)
}

func TestFeatureCollectionFind(t *testing.T) {
	fc := domain.FeatureCollection{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}

	f, ok := fc.Find("b")
	require.True(t, ok)
	assert.Equal(t, "B", f.Title)

	_, ok = fc.Find("c")
	assert.False(t, ok)
}

func TestPlacement(t *testing.T) {
	loc := &domain.Location{ID: "l1"}
	j := &domain.Job{ID: "j1", Title: "Chef", Category: "chef", LocationID: "l1", Location: loc}
	assert.Equal(t, domain.Placement{
		ID: "j1", Kind: domain.FeatureKindJob, Title: "Chef", Category: "chef",
		Location: loc, LocationRef: "l1",
	}, j.Placement())

	e := &domain.Event{ID: "e1", Title: "Crew drinks", LocationID: "l2"}
	p := e.Placement()
	assert.Equal(t, domain.FeatureKindEvent, p.Kind)
	assert.Nil(t, p.Location)
	assert.Equal(t, "l2", p.LocationRef)
}

func problems(t *testing.T, err error) []string {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	return ve.Problems
}

func TestJobValidate(t *testing.T) {
	now := time.Now()
	assert.NoError(t, (&domain.Job{Title: "Deckhand", Rate: 150}).Validate())

	bad := &domain.Job{
		Title:    "  ",
		Rate:     -1,
		StartsAt: ptr(now),
		ClosesAt: ptr(now.Add(-time.Hour)),
	}
	assert.ElementsMatch(t, []string{
		"title is required",
		"rate must not be negative",
		"closes_at must be after starts_at",
	}, problems(t, bad.Validate()))

	long := &domain.Job{Title: strings.Repeat("x", 121)}
	assert.Equal(t, []string{"title must be at most 120 characters"}, problems(t, long.Validate()))
}

func TestEventValidate(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	assert.NoError(t, (&domain.Event{Title: "Regatta party", StartsAt: start}).Validate())

	err := (&domain.Event{Title: "Regatta party"}).Validate()
	assert.Contains(t, problems(t, err), "starts_at is required")

	err = (&domain.Event{Title: "Regatta party", StartsAt: start, EndsAt: ptr(start)}).Validate()
	assert.Equal(t, []string{"ends_at must be after starts_at"}, problems(t, err))
}

func TestPostValidate(t *testing.T) {
	assert.NoError(t, (&domain.Post{Body: "Looking for a stew in Palma"}).Validate())
	assert.Equal(t, []string{"body is required"}, problems(t, (&domain.Post{Body: "\n "}).Validate()))
	assert.Len(t, problems(t, (&domain.Post{Body: strings.Repeat("é", 2001)}).Validate()), 1)
}

func TestLocationValidate(t *testing.T) {
	assert.NoError(t, (&domain.Location{Name: "Palma"}).Validate())
	assert.NoError(t, (&domain.Location{Name: "Palma", Longitude: ptr(2.65), Latitude: ptr(39.57)}).Validate())

	err := (&domain.Location{Name: "Palma", Longitude: ptr(2.65)}).Validate()
	assert.Equal(t, []string{"longitude and latitude must be given together"}, problems(t, err))

	err = (&domain.Location{Longitude: ptr(200.0), Latitude: ptr(0.0)}).Validate()
	assert.ElementsMatch(t, []string{"name is required", "coordinates are out of range"}, problems(t, err))
}

func TestIncludes(t *testing.T) {
	assert.True(t, domain.Includes([]string{"author", "location"}, "location"))
	assert.False(t, domain.Includes(nil, "location"))
}
