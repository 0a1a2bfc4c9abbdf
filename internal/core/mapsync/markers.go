package mapsync

import (
	"context"
	"log/slog"
	"sort"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/ports"
	"github.com/samirrijal/crewmap/internal/pkg/metrics"
)

type liveMarker struct {
	handle  ports.MarkerHandle
	feature domain.Feature
	content ports.MarkerContent
	filled  bool
}

// MarkerManager owns one marker handle per live feature id. It is not safe for
// concurrent use; a Session calls it from its event loop only.
type MarkerManager struct {
	mapc    ports.MapCapability
	markers map[string]*liveMarker
	sel     domain.SelectionState
}

// NewMarkerManager creates a MarkerManager drawing on mapc.
func NewMarkerManager(mapc ports.MapCapability) *MarkerManager {
	return &MarkerManager{
		mapc:    mapc,
		markers: make(map[string]*liveMarker),
	}
}

// Reconcile brings the live handles into agreement with current: handles for
// ids that left are destroyed, ids that arrived get a new handle, and handles
// for ids present on both sides are left in place. It does nothing until the
// map is ready; the next call after readiness catches up.
func (m *MarkerManager) Reconcile(ctx context.Context, current domain.FeatureCollection) {
	if !m.mapc.Ready() {
		slog.DebugContext(ctx, "map not ready, skipping marker reconcile", "features", len(current))
		return
	}

	want := make(map[string]domain.Feature, len(current))
	for _, f := range current {
		if _, dup := want[f.ID]; !dup {
			want[f.ID] = f
		}
	}

	for _, id := range m.ids() {
		if _, keep := want[id]; !keep {
			m.destroy(ctx, id)
		}
	}

	for _, f := range current {
		if lm, live := m.markers[f.ID]; live {
			lm.feature = want[f.ID]
			m.fill(ctx, lm)
			continue
		}
		m.create(ctx, f)
	}
}

// Restyle records the selection state and re-supplies content to every marker
// whose hovered or selected flag changed.
func (m *MarkerManager) Restyle(ctx context.Context, sel domain.SelectionState) {
	m.sel = sel
	for _, id := range m.ids() {
		m.fill(ctx, m.markers[id])
	}
}

// Teardown destroys every live handle.
func (m *MarkerManager) Teardown(ctx context.Context) {
	for _, id := range m.ids() {
		m.destroy(ctx, id)
	}
}

// Handle returns the live handle for id.
func (m *MarkerManager) Handle(id string) (ports.MarkerHandle, bool) {
	lm, ok := m.markers[id]
	if !ok {
		return nil, false
	}
	return lm.handle, true
}

// Len returns the number of live handles.
func (m *MarkerManager) Len() int {
	return len(m.markers)
}

func (m *MarkerManager) create(ctx context.Context, f domain.Feature) {
	h, err := m.mapc.CreateMarker(ctx, f.Point)
	if err != nil {
		// No rollback: the id stays without a handle and the next reconcile retries it.
		slog.WarnContext(ctx, "create marker failed", "id", f.ID, "error", err)
		metrics.MarkerOps.WithLabelValues("create_failed").Inc()
		return
	}
	lm := &liveMarker{handle: h, feature: f}
	m.markers[f.ID] = lm
	metrics.MarkerOps.WithLabelValues("create").Inc()
	metrics.MarkersLive.Inc()
	m.fill(ctx, lm)
}

func (m *MarkerManager) destroy(ctx context.Context, id string) {
	lm := m.markers[id]
	delete(m.markers, id)
	metrics.MarkersLive.Dec()
	if err := m.mapc.DestroyMarker(ctx, lm.handle); err != nil {
		slog.WarnContext(ctx, "destroy marker failed", "id", id, "marker", lm.handle.MarkerID(), "error", err)
		metrics.MarkerOps.WithLabelValues("destroy_failed").Inc()
		return
	}
	metrics.MarkerOps.WithLabelValues("destroy").Inc()
}

func (m *MarkerManager) fill(ctx context.Context, lm *liveMarker) {
	content := ports.MarkerContent{
		Kind:     lm.feature.Kind,
		Title:    lm.feature.Title,
		Category: lm.feature.Category,
		Hovered:  m.sel.HoveredID == lm.feature.ID,
		Selected: selectedID(m.sel) == lm.feature.ID,
	}
	if lm.filled && content == lm.content {
		return
	}
	if err := m.mapc.SetPopup(ctx, lm.handle, content); err != nil {
		slog.WarnContext(ctx, "set marker content failed", "id", lm.feature.ID, "error", err)
		return
	}
	lm.content = content
	lm.filled = true
}

func (m *MarkerManager) ids() []string {
	ids := make([]string, 0, len(m.markers))
	for id := range m.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
