package mapsync_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
)

func TestFilter_Copenhagen(t *testing.T) {
	fc := domain.FeatureCollection{
		feature("1", 12.59, 55.68),
		feature("2", 12.65, 55.64),
	}
	got := mapsync.Filter(fc, box(12.58, 55.65, 12.60, 55.70))

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilter_EdgesInclusive(t *testing.T) {
	fc := domain.FeatureCollection{
		feature("sw", 0, 0),
		feature("ne", 10, 10),
		feature("edge", 10, 5),
		feature("out", 10.0001, 5),
	}
	got := mapsync.Filter(fc, box(0, 0, 10, 10))

	ids := make([]string, len(got))
	for i, f := range got {
		ids[i] = f.ID
	}
	assert.Equal(t, []string{"sw", "ne", "edge"}, ids)
}

func TestFilter_DegenerateBox(t *testing.T) {
	fc := domain.FeatureCollection{feature("on", 3, 4), feature("off", 3, 4.5)}
	got := mapsync.Filter(fc, box(3, 4, 3, 4))

	require.Len(t, got, 1)
	assert.Equal(t, "on", got[0].ID)
}

func TestFilter_AntimeridianBoxMatchesNothing(t *testing.T) {
	fc := domain.FeatureCollection{feature("fiji", 179, -17), feature("samoa", -171, -13)}
	got := mapsync.Filter(fc, box(170, -20, -170, -10))
	assert.Empty(t, got)
}

func TestFilter_MatchesInequalityAndIsPure(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	fc := make(domain.FeatureCollection, 200)
	for i := range fc {
		fc[i] = feature(string(rune('a'+i%26))+string(rune('0'+i/26)), r.Float64()*360-180, r.Float64()*180-90)
	}
	b := box(-40, -20, 60, 45)

	got := mapsync.Filter(fc, b)
	again := mapsync.Filter(fc, b)
	assert.Equal(t, got, again)

	var want domain.FeatureCollection
	for _, f := range fc {
		if b.SouthWest.Lon <= f.Point.Lon && f.Point.Lon <= b.NorthEast.Lon &&
			b.SouthWest.Lat <= f.Point.Lat && f.Point.Lat <= b.NorthEast.Lat {
			want = append(want, f)
		}
	}
	assert.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
	}
}

func TestToGeoJSON(t *testing.T) {
	fc := domain.FeatureCollection{
		{ID: "1", Kind: domain.FeatureKindEvent, Title: "Meetup", Category: "social", Point: domain.GeoPoint{Lon: 12.5, Lat: 55.6}},
		{ID: "2", Kind: domain.FeatureKindEvent, Title: "Regatta", Point: domain.GeoPoint{Lon: 1, Lat: 2}},
	}
	gj := mapsync.ToGeoJSON(fc)

	require.Len(t, gj.Features, 2)
	assert.Equal(t, "1", gj.Features[0].ID)
	assert.Equal(t, "Meetup", gj.Features[0].Properties["title"])
	assert.Equal(t, "social", gj.Features[0].Properties["category"])
	assert.Equal(t, "event", gj.Features[0].Properties["kind"])
	_, hasCategory := gj.Features[1].Properties["category"]
	assert.False(t, hasCategory)

	raw, err := gj.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"coordinates":[12.5,55.6]`)
}
