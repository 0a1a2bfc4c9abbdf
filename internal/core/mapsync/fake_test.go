package mapsync_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

type fakeHandle struct {
	id    string
	point domain.GeoPoint
}

func (h *fakeHandle) MarkerID() string { return h.id }

type flight struct {
	point    domain.GeoPoint
	zoom     float64
	duration time.Duration
}

// fakeMap records every call made against it. Handles are pointers so tests
// can compare identity across reconciliations.
type fakeMap struct {
	mu         sync.Mutex
	ready      bool
	seq        int
	live       map[string]*fakeHandle
	created    []*fakeHandle
	destroyed  []*fakeHandle
	popups     map[string][]ports.MarkerContent
	flights    []flight
	failNext   int // number of upcoming CreateMarker calls that fail
	destroyErr error
}

func newFakeMap(ready bool) *fakeMap {
	return &fakeMap{
		ready:  ready,
		live:   make(map[string]*fakeHandle),
		popups: make(map[string][]ports.MarkerContent),
	}
}

func (m *fakeMap) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *fakeMap) setReady(r bool) {
	m.mu.Lock()
	m.ready = r
	m.mu.Unlock()
}

func (m *fakeMap) CreateMarker(_ context.Context, p domain.GeoPoint) (ports.MarkerHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return nil, errors.New("map: create failed")
	}
	m.seq++
	h := &fakeHandle{id: fmt.Sprintf("m%d", m.seq), point: p}
	m.live[h.id] = h
	m.created = append(m.created, h)
	return h, nil
}

func (m *fakeMap) DestroyMarker(_ context.Context, h ports.MarkerHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fh := h.(*fakeHandle)
	m.destroyed = append(m.destroyed, fh)
	if m.destroyErr != nil {
		return m.destroyErr
	}
	delete(m.live, fh.id)
	return nil
}

func (m *fakeMap) SetPopup(_ context.Context, h ports.MarkerHandle, c ports.MarkerContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.popups[h.MarkerID()] = append(m.popups[h.MarkerID()], c)
	return nil
}

func (m *fakeMap) FlyTo(_ context.Context, p domain.GeoPoint, zoom float64, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights = append(m.flights, flight{point: p, zoom: zoom, duration: d})
	return nil
}

func (m *fakeMap) Bounds() (domain.BoundingBox, bool) {
	return domain.BoundingBox{}, false
}

func (m *fakeMap) liveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

func (m *fakeMap) flightCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flights)
}

func (m *fakeMap) lastPopup(markerID string) (ports.MarkerContent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := m.popups[markerID]
	if len(ps) == 0 {
		return ports.MarkerContent{}, false
	}
	return ps[len(ps)-1], true
}

func feature(id string, lon, lat float64) domain.Feature {
	return domain.Feature{ID: id, Kind: domain.FeatureKindJob, Title: "Job " + id, Point: domain.GeoPoint{Lon: lon, Lat: lat}}
}

func features(ids ...string) domain.FeatureCollection {
	fc := make(domain.FeatureCollection, 0, len(ids))
	for i, id := range ids {
		fc = append(fc, feature(id, float64(i), float64(i)))
	}
	return fc
}

func box(swLon, swLat, neLon, neLat float64) domain.BoundingBox {
	return domain.BoundingBox{
		SouthWest: domain.GeoPoint{Lon: swLon, Lat: swLat},
		NorthEast: domain.GeoPoint{Lon: neLon, Lat: neLat},
	}
}

func ptr(f float64) *float64 { return &f }
