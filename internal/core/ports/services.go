package ports

import (
	"context"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRecordChange(ctx context.Context, change domain.RecordChange) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRecordChanges(ctx context.Context, handler func(ctx context.Context, change domain.RecordChange) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ExpiryScheduler arranges for a listing to be removed once it expires.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, kind domain.FeatureKind, id string, at time.Time) error
}
