package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
	"github.com/samirrijal/crewmap/internal/core/ports"
	"github.com/samirrijal/crewmap/internal/pkg/metrics"
)

// FeatureSource produces the current features of a kind.
type FeatureSource interface {
	Features(ctx context.Context, kind domain.FeatureKind) (domain.FeatureCollection, error)
}

// DefaultPushTimeout bounds how long a record change waits on one session.
const DefaultPushTimeout = 5 * time.Second

// MapSessionOption configures a MapSessionService.
type MapSessionOption func(*MapSessionService)

// WithPushTimeout sets how long HandleRecordChange waits for each session.
func WithPushTimeout(d time.Duration) MapSessionOption {
	return func(s *MapSessionService) { s.pushTimeout = d }
}

// MapSessionService keeps track of the map sessions open on this instance.
type MapSessionService struct {
	features    FeatureSource
	opts        mapsync.Options
	pushTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*mapsync.Session
}

// NewMapSessionService creates a MapSessionService.
func NewMapSessionService(features FeatureSource, opts mapsync.Options, options ...MapSessionOption) *MapSessionService {
	s := &MapSessionService{
		features:    features,
		opts:        opts,
		pushTimeout: DefaultPushTimeout,
		sessions:    make(map[string]*mapsync.Session),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Open starts a session showing kind on mapc, seeded with the current features.
// A map that is already loaded also seeds the session's viewport.
func (s *MapSessionService) Open(ctx context.Context, kind domain.FeatureKind, mapc ports.MapCapability) (*mapsync.Session, error) {
	fc, err := s.features.Features(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s features: %w", kind, err)
	}

	sess := mapsync.NewSession(uuid.NewString(), kind, mapc, mapsync.NewSelection(), s.opts)
	seed := []mapsync.Event{mapsync.FeaturesChanged{Features: fc}}
	if b, ok := mapc.Bounds(); ok && mapc.Ready() {
		seed = append(seed, mapsync.Loaded{Bounds: b})
	}
	for _, ev := range seed {
		if err := sess.Dispatch(ctx, ev); err != nil {
			sess.Close()
			return nil, err
		}
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	metrics.MapSessions.Inc()

	slog.InfoContext(ctx, "map session opened", "map_session", sess.ID(), "kind", kind, "features", len(fc))
	return sess, nil
}

// Get returns an open session.
func (s *MapSessionService) Get(id string) (*mapsync.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// View returns a snapshot of an open session.
func (s *MapSessionService) View(id string) (mapsync.View, error) {
	sess, err := s.Get(id)
	if err != nil {
		return mapsync.View{}, err
	}
	return sess.View(), nil
}

// Dispatch applies ev to an open session and returns the resulting view.
func (s *MapSessionService) Dispatch(ctx context.Context, id string, ev mapsync.Event) (mapsync.View, error) {
	sess, err := s.Get(id)
	if err != nil {
		return mapsync.View{}, err
	}
	if err := sess.Dispatch(ctx, ev); err != nil {
		if errors.Is(err, domain.ErrSessionClosed) {
			return mapsync.View{}, domain.ErrNotFound
		}
		return mapsync.View{}, err
	}
	return sess.View(), nil
}

// Close ends a session and destroys its markers.
func (s *MapSessionService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	sess.Close()
	metrics.MapSessions.Dec()
	slog.Info("map session closed", "map_session", id)
	return nil
}

// CloseAll ends every session.
func (s *MapSessionService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*mapsync.Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
		metrics.MapSessions.Dec()
	}
}

// Count returns the number of open sessions.
func (s *MapSessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// HandleRecordChange re-projects the changed kind once and pushes the result
// to every session showing it.
func (s *MapSessionService) HandleRecordChange(ctx context.Context, change domain.RecordChange) error {
	targets := s.sessionsOf(change.Kind)
	if len(targets) == 0 {
		return nil
	}

	fc, err := s.features.Features(ctx, change.Kind)
	if err != nil {
		return fmt.Errorf("refresh %s features: %w", change.Kind, err)
	}
	for _, sess := range targets {
		pctx, cancel := context.WithTimeout(ctx, s.pushTimeout)
		err := sess.Dispatch(pctx, mapsync.FeaturesChanged{Features: fc})
		cancel()
		if err != nil && !errors.Is(err, domain.ErrSessionClosed) {
			slog.WarnContext(ctx, "push features to map session failed", "map_session", sess.ID(), "error", err)
		}
	}
	slog.DebugContext(ctx, "record change applied to map sessions",
		"kind", change.Kind, "id", change.ID, "op", change.Op, "sessions", len(targets))
	return nil
}

func (s *MapSessionService) sessionsOf(kind domain.FeatureKind) []*mapsync.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*mapsync.Session
	for _, sess := range s.sessions {
		if sess.Kind() == kind {
			out = append(out, sess)
		}
	}
	return out
}
