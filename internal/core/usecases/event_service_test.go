package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/usecases"
)

func TestEventService_Create_SchedulesAtEnd(t *testing.T) {
	sched := &mockScheduler{}
	pub := &mockPublisher{}
	svc := usecases.NewEventService(&mockEventRepo{}, nil, pub, sched)

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(3 * time.Hour)
	ev := &domain.Event{Title: "Crew BBQ", StartsAt: start, EndsAt: &end}
	if err := svc.Create(context.Background(), "host-1", ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.HostID != "host-1" {
		t.Errorf("expected host-1, got %q", ev.HostID)
	}
	if len(sched.calls) != 1 || !sched.calls[0].at.Equal(end) || sched.calls[0].kind != domain.FeatureKindEvent {
		t.Errorf("unexpected schedule calls: %+v", sched.calls)
	}
	if len(pub.changes) != 1 || pub.changes[0].Kind != domain.FeatureKindEvent {
		t.Errorf("unexpected changes: %+v", pub.changes)
	}
}

func TestEventService_Create_SchedulesAtStartWithoutEnd(t *testing.T) {
	sched := &mockScheduler{}
	svc := usecases.NewEventService(&mockEventRepo{}, nil, nil, sched)

	start := time.Now().Add(time.Hour)
	if err := svc.Create(context.Background(), "h", &domain.Event{Title: "Regatta", StartsAt: start}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sched.calls) != 1 || !sched.calls[0].at.Equal(start) {
		t.Errorf("unexpected schedule calls: %+v", sched.calls)
	}
}

func TestEventService_Create_RequiresStart(t *testing.T) {
	svc := usecases.NewEventService(&mockEventRepo{}, nil, nil, nil)
	err := svc.Create(context.Background(), "h", &domain.Event{Title: "Someday"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEventService_List_KeyIncludesFilter(t *testing.T) {
	var seen []string
	repo := &mockEventRepo{
		findFn: func(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
			seen = append(seen, f.Category)
			return nil, nil
		},
	}
	svc := usecases.NewEventService(repo, newMemCache(), nil, nil)
	ctx := context.Background()

	_, _ = svc.List(ctx, domain.EventFilter{Category: "social"})
	_, _ = svc.List(ctx, domain.EventFilter{Category: "training"})
	_, _ = svc.List(ctx, domain.EventFilter{Category: "social"})

	if len(seen) != 2 {
		t.Errorf("expected 2 repo calls for 2 distinct filters, got %v", seen)
	}
}

func TestEventService_Delete_Forbidden(t *testing.T) {
	repo := &mockEventRepo{
		getFn: func(ctx context.Context, id string, include ...string) (*domain.Event, error) {
			return &domain.Event{ID: id, HostID: "host"}, nil
		},
		destroyFn: func(ctx context.Context, id string) error {
			t.Error("destroy must not be called")
			return nil
		},
	}
	svc := usecases.NewEventService(repo, nil, nil, nil)
	if err := svc.Delete(context.Background(), "guest", "1"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestEventService_Expire_NotYetEnded(t *testing.T) {
	now := time.Now()
	end := now.Add(time.Hour)
	repo := &mockEventRepo{
		getFn: func(ctx context.Context, id string, include ...string) (*domain.Event, error) {
			return &domain.Event{ID: id, StartsAt: now.Add(-time.Hour), EndsAt: &end}, nil
		},
	}
	svc := usecases.NewEventService(repo, nil, nil, nil)
	gone, err := svc.Expire(context.Background(), "1", now)
	if err != nil || gone {
		t.Errorf("expected event kept, got gone=%v err=%v", gone, err)
	}
}
