package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

const eventsPrefix = "events"

// EventService handles social events.
type EventService struct {
	events    ports.EventRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	scheduler ports.ExpiryScheduler
}

// NewEventService creates a new EventService. cache, publisher and scheduler may be nil.
func NewEventService(events ports.EventRepository, cache ports.CacheService, publisher ports.EventPublisher, scheduler ports.ExpiryScheduler) *EventService {
	return &EventService{events: events, cache: cache, publisher: publisher, scheduler: scheduler}
}

// List returns events matching filter.
func (s *EventService) List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	filter.Limit = clampLimit(filter.Limit, 50, 1000)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var after string
	if filter.After != nil {
		// Minute precision keeps "upcoming" queries cacheable.
		after = filter.After.UTC().Truncate(time.Minute).Format(time.RFC3339)
	}
	key := fmt.Sprintf("%s:list:%s:%s:%s:%s:%s:%d:%d", eventsPrefix,
		generation(ctx, s.cache, eventsPrefix),
		filter.Category, filter.HostID, after, strings.Join(filter.Include, ","),
		filter.Limit, filter.Offset)

	return readThrough(ctx, s.cache, "events_list", key, listTTL, func() ([]domain.Event, error) {
		return s.events.Find(ctx, filter)
	})
}

// Get returns a single event with its location included.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return readThrough(ctx, s.cache, "events_get", eventsPrefix+":id:"+id, getTTL, func() (*domain.Event, error) {
		return s.events.Get(ctx, id, "location")
	})
}

// Create validates and stores a new event hosted by actor.
func (s *EventService) Create(ctx context.Context, actor string, event *domain.Event) error {
	event.ID = ""
	event.HostID = actor
	if err := event.Validate(); err != nil {
		return err
	}
	if err := s.events.Save(ctx, event); err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	s.afterSave(ctx, event)
	return nil
}

// Update replaces an event hosted by actor.
func (s *EventService) Update(ctx context.Context, actor string, event *domain.Event) error {
	existing, err := s.events.Get(ctx, event.ID)
	if err != nil {
		return err
	}
	if actor != "" && existing.HostID != actor {
		return domain.ErrForbidden
	}
	event.HostID = existing.HostID
	event.CreatedAt = existing.CreatedAt
	if err := event.Validate(); err != nil {
		return err
	}
	if err := s.events.Save(ctx, event); err != nil {
		return fmt.Errorf("save event %s: %w", event.ID, err)
	}
	s.afterSave(ctx, event)
	return nil
}

// Delete removes an event hosted by actor.
func (s *EventService) Delete(ctx context.Context, actor, id string) error {
	existing, err := s.events.Get(ctx, id)
	if err != nil {
		return err
	}
	if actor != "" && existing.HostID != actor {
		return domain.ErrForbidden
	}
	if err := s.events.Destroy(ctx, id); err != nil {
		return fmt.Errorf("destroy event %s: %w", id, err)
	}
	invalidate(ctx, s.cache, eventsPrefix, id)
	publishChange(ctx, s.publisher, domain.FeatureKindEvent, id, domain.ChangeDestroyed)
	return nil
}

// Expire removes an event that has ended; see JobService.Expire.
func (s *EventService) Expire(ctx context.Context, id string, now time.Time) (bool, error) {
	event, err := s.events.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if eventEnd(event).After(now) {
		return false, nil
	}
	if err := s.Delete(ctx, "", id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	return true, nil
}

func (s *EventService) afterSave(ctx context.Context, event *domain.Event) {
	invalidate(ctx, s.cache, eventsPrefix, event.ID)
	publishChange(ctx, s.publisher, domain.FeatureKindEvent, event.ID, domain.ChangeSaved)
	scheduleExpiry(ctx, s.scheduler, domain.FeatureKindEvent, event.ID, eventEnd(event))
}

// eventEnd is when an event drops off the map: its end, or its start when it has none.
func eventEnd(e *domain.Event) time.Time {
	if e.EndsAt != nil {
		return *e.EndsAt
	}
	return e.StartsAt
}
