package ports

import (
	"context"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// JobRepository persists jobs.
type JobRepository interface {
	Find(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	Get(ctx context.Context, id string, include ...string) (*domain.Job, error)
	Save(ctx context.Context, job *domain.Job) error
	SaveBatch(ctx context.Context, jobs []domain.Job) error
	Destroy(ctx context.Context, id string) error
}

// EventRepository persists events.
type EventRepository interface {
	Find(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	Get(ctx context.Context, id string, include ...string) (*domain.Event, error)
	Save(ctx context.Context, event *domain.Event) error
	SaveBatch(ctx context.Context, events []domain.Event) error
	Destroy(ctx context.Context, id string) error
}

// PostRepository persists feed posts.
type PostRepository interface {
	Feed(ctx context.Context, limit, offset int) ([]domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	Save(ctx context.Context, post *domain.Post) error
	Destroy(ctx context.Context, id string) error
}

// LocationRepository persists locations referenced by jobs and events.
type LocationRepository interface {
	Get(ctx context.Context, id string) (*domain.Location, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Location, error)
	Search(ctx context.Context, name string, limit int) ([]domain.Location, error)
	Save(ctx context.Context, loc *domain.Location) error
	SaveBatch(ctx context.Context, locs []domain.Location) error
}
