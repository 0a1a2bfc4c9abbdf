package mapsync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

const (
	DefaultFlyToZoom     = 12.0
	DefaultFlyToDuration = 1500 * time.Millisecond
)

// Options tunes a Session.
type Options struct {
	FlyToZoom     float64
	FlyToDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.FlyToZoom <= 0 {
		o.FlyToZoom = DefaultFlyToZoom
	}
	if o.FlyToDuration <= 0 {
		o.FlyToDuration = DefaultFlyToDuration
	}
	return o
}

// View is a read-only snapshot of a session for sidebars and API readers.
type View struct {
	ID        string                   `json:"id"`
	Kind      domain.FeatureKind       `json:"kind"`
	Ready     bool                     `json:"ready"`
	Bounds    *domain.BoundingBox      `json:"bounds,omitempty"`
	Visible   domain.FeatureCollection `json:"visible"`
	Count     int                      `json:"count"`
	Total     int                      `json:"total"`
	Markers   int                      `json:"markers"`
	Selection domain.SelectionState    `json:"selection"`
}

type envelope struct {
	ctx context.Context
	ev  Event
	ack chan struct{}
}

// Session synchronises one connected map with its sidebar. Events are applied
// one at a time on the session's own goroutine, each to completion before the
// next. After every event the loop publishes a complete View, so readers never
// see half an event.
type Session struct {
	id        string
	kind      domain.FeatureKind
	mapc      ports.MapCapability
	selection *Selection
	markers   *MarkerManager
	opts      Options
	logger    *slog.Logger

	// Owned by the loop goroutine.
	all       domain.FeatureCollection
	visible   domain.FeatureCollection
	bounds    *domain.BoundingBox
	loaded    bool
	restyle   bool
	flyTarget *domain.Feature

	view atomic.Pointer[View]

	queue     chan envelope
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewSession creates a session and starts its event loop. Close must be called
// to stop the loop and release the session's markers. The session becomes the
// only writer of selection.
func NewSession(id string, kind domain.FeatureKind, mapc ports.MapCapability, selection *Selection, opts Options) *Session {
	s := &Session{
		id:        id,
		kind:      kind,
		mapc:      mapc,
		selection: selection,
		markers:   NewMarkerManager(mapc),
		opts:      opts.withDefaults(),
		logger:    slog.Default().With("map_session", id),
		queue:     make(chan envelope),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	selection.OnChange(s.selectionChanged)
	s.publish()
	go s.loop()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Kind returns the kind of feature the session shows.
func (s *Session) Kind() domain.FeatureKind { return s.kind }

// Dispatch hands ev to the event loop and waits until it has been applied.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	env := envelope{ctx: ctx, ev: ev, ack: make(chan struct{})}
	select {
	case s.queue <- env:
	case <-s.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-env.ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns the snapshot published after the last applied event.
func (s *Session) View() View {
	v := *s.view.Load()
	v.Visible = append(domain.FeatureCollection(nil), v.Visible...)
	return v
}

// Close stops the event loop and destroys all markers. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
}

func (s *Session) loop() {
	defer close(s.stopped)
	for {
		select {
		case env := <-s.queue:
			s.apply(env.ctx, env.ev)
			s.afterSelection(env.ctx)
			s.publish()
			close(env.ack)
		case <-s.done:
			s.markers.Teardown(context.Background())
			s.publish()
			s.logger.Debug("map session stopped")
			return
		}
	}
}

// publish stores the complete state as the next View.
func (s *Session) publish() {
	v := &View{
		ID:        s.id,
		Kind:      s.kind,
		Ready:     s.loaded,
		Visible:   append(domain.FeatureCollection(nil), s.visible...),
		Count:     len(s.visible),
		Total:     len(s.all),
		Markers:   s.markers.Len(),
		Selection: s.selection.Snapshot(),
	}
	if s.bounds != nil {
		b := *s.bounds
		v.Bounds = &b
	}
	s.view.Store(v)
}

func (s *Session) apply(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case FeaturesChanged:
		s.setFeatures(ctx, e.Features)
	case Loaded:
		s.load(ctx, e.Bounds)
	case MoveEnded:
		s.setBounds(e.Bounds)
	case ZoomEnded:
		s.setBounds(e.Bounds)
	case Clicked:
		s.click(ctx, e)
	case Hovered:
		s.selection.SetHovered(e.FeatureID)
	case Selected:
		s.selectByID(ctx, e.FeatureID)
	default:
		s.logger.WarnContext(ctx, "unknown map event", "event", ev)
	}
}

// selectionChanged runs on the loop goroutine, inside whichever handler wrote
// the selection. Markers are restyled once the event is fully applied.
func (s *Session) selectionChanged(prev, next domain.SelectionState) {
	s.restyle = true
	if next.Selected != nil && selectedID(prev) != next.Selected.ID {
		f := *next.Selected
		s.flyTarget = &f
	}
}

// afterSelection carries out the map side effects of the selection changes
// made by the last event.
func (s *Session) afterSelection(ctx context.Context) {
	if f := s.flyTarget; f != nil {
		s.flyTarget = nil
		if s.mapc.Ready() {
			if err := s.mapc.FlyTo(ctx, f.Point, s.opts.FlyToZoom, s.opts.FlyToDuration); err != nil {
				s.logger.WarnContext(ctx, "fly to selection failed", "id", f.ID, "error", err)
			}
		}
	}
	if s.restyle {
		s.restyle = false
		s.markers.Restyle(ctx, s.selection.Snapshot())
	}
}

func (s *Session) setFeatures(ctx context.Context, fc domain.FeatureCollection) {
	s.all = fc
	s.refilter()

	// A selection or hover pointing at a feature that is gone is dropped;
	// a selected feature that changed is refreshed in place.
	prev := s.selection.Snapshot()
	if prev.Selected != nil {
		if f, ok := fc.Find(prev.Selected.ID); !ok {
			s.selection.ClearSelected()
		} else if f != *prev.Selected {
			s.selection.SetSelected(&f)
		}
	}
	if prev.HoveredID != "" {
		if _, ok := fc.Find(prev.HoveredID); !ok {
			s.selection.SetHovered("")
		}
	}
	s.markers.Reconcile(ctx, fc)
}

func (s *Session) load(ctx context.Context, b domain.BoundingBox) {
	first := !s.loaded
	s.loaded = true
	s.bounds = &b
	s.refilter()
	if !first {
		return
	}
	s.markers.Reconcile(ctx, s.all)
	s.restyle = true
	s.logger.DebugContext(ctx, "map loaded", "features", len(s.all), "markers", s.markers.Len())
}

func (s *Session) setBounds(b domain.BoundingBox) {
	s.bounds = &b
	s.refilter()
}

func (s *Session) click(ctx context.Context, e Clicked) {
	switch e.Target {
	case TargetMarker:
		// Handled here only: a marker click never also counts as a background click.
		s.selectByID(ctx, e.FeatureID)
	case TargetPopup:
	case TargetBackground:
		s.selectByID(ctx, "")
	default:
		s.logger.DebugContext(ctx, "click on unknown target", "target", e.Target)
	}
}

func (s *Session) selectByID(ctx context.Context, id string) {
	if id == "" {
		s.selection.ClearSelected()
		return
	}
	f, ok := s.all.Find(id)
	if !ok {
		s.logger.DebugContext(ctx, "selected feature not in session", "id", id)
		return
	}
	s.selection.SetSelected(&f)
}

func (s *Session) refilter() {
	if s.bounds == nil {
		s.visible = s.all
		return
	}
	s.visible = Filter(s.all, *s.bounds)
}
