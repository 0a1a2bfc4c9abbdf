package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

const jobsPrefix = "jobs"

// JobService handles job listings.
type JobService struct {
	jobs      ports.JobRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	scheduler ports.ExpiryScheduler
}

// NewJobService creates a new JobService. cache, publisher and scheduler may be nil.
func NewJobService(jobs ports.JobRepository, cache ports.CacheService, publisher ports.EventPublisher, scheduler ports.ExpiryScheduler) *JobService {
	return &JobService{jobs: jobs, cache: cache, publisher: publisher, scheduler: scheduler}
}

// List returns jobs matching filter.
func (s *JobService) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	filter.Limit = clampLimit(filter.Limit, 50, 1000)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	key := fmt.Sprintf("%s:list:%s:%s:%s:%s:%d:%d", jobsPrefix,
		generation(ctx, s.cache, jobsPrefix),
		filter.Category, filter.PostedBy, strings.Join(filter.Include, ","),
		filter.Limit, filter.Offset)

	return readThrough(ctx, s.cache, "jobs_list", key, listTTL, func() ([]domain.Job, error) {
		return s.jobs.Find(ctx, filter)
	})
}

// Get returns a single job with its location included.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return readThrough(ctx, s.cache, "jobs_get", jobsPrefix+":id:"+id, getTTL, func() (*domain.Job, error) {
		return s.jobs.Get(ctx, id, "location")
	})
}

// Create validates and stores a new job posted by actor.
func (s *JobService) Create(ctx context.Context, actor string, job *domain.Job) error {
	job.ID = ""
	job.PostedBy = actor
	if err := job.Validate(); err != nil {
		return err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	s.afterSave(ctx, job)
	return nil
}

// Update replaces a job owned by actor. An empty actor skips the ownership
// check; it is used by trusted callers when authentication is off.
func (s *JobService) Update(ctx context.Context, actor string, job *domain.Job) error {
	existing, err := s.jobs.Get(ctx, job.ID)
	if err != nil {
		return err
	}
	if actor != "" && existing.PostedBy != actor {
		return domain.ErrForbidden
	}
	job.PostedBy = existing.PostedBy
	job.CreatedAt = existing.CreatedAt
	if err := job.Validate(); err != nil {
		return err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	s.afterSave(ctx, job)
	return nil
}

// Delete removes a job owned by actor.
func (s *JobService) Delete(ctx context.Context, actor, id string) error {
	existing, err := s.jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	if actor != "" && existing.PostedBy != actor {
		return domain.ErrForbidden
	}
	if err := s.jobs.Destroy(ctx, id); err != nil {
		return fmt.Errorf("destroy job %s: %w", id, err)
	}
	invalidate(ctx, s.cache, jobsPrefix, id)
	publishChange(ctx, s.publisher, domain.FeatureKindJob, id, domain.ChangeDestroyed)
	return nil
}

// Expire removes a job whose closing time has passed. A job that is gone, or
// whose closing time was moved or cleared since the expiry was scheduled, is
// left alone. It reports whether the job was removed.
func (s *JobService) Expire(ctx context.Context, id string, now time.Time) (bool, error) {
	job, err := s.jobs.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if job.ClosesAt == nil || job.ClosesAt.After(now) {
		return false, nil
	}
	if err := s.Delete(ctx, "", id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	return true, nil
}

func (s *JobService) afterSave(ctx context.Context, job *domain.Job) {
	invalidate(ctx, s.cache, jobsPrefix, job.ID)
	publishChange(ctx, s.publisher, domain.FeatureKindJob, job.ID, domain.ChangeSaved)
	if job.ClosesAt != nil {
		scheduleExpiry(ctx, s.scheduler, domain.FeatureKindJob, job.ID, *job.ClosesAt)
	}
}

// publishChange broadcasts a change; failures are logged, never returned.
func publishChange(ctx context.Context, publisher ports.EventPublisher, kind domain.FeatureKind, id string, op domain.ChangeOp) {
	if publisher == nil {
		return
	}
	change := domain.RecordChange{Kind: kind, ID: id, Op: op, At: time.Now().UTC()}
	if err := publisher.PublishRecordChange(ctx, change); err != nil {
		slog.WarnContext(ctx, "publish record change failed", "kind", kind, "id", id, "op", op, "error", err)
	}
}

func scheduleExpiry(ctx context.Context, scheduler ports.ExpiryScheduler, kind domain.FeatureKind, id string, at time.Time) {
	if scheduler == nil {
		return
	}
	if err := scheduler.ScheduleExpiry(ctx, kind, id, at); err != nil {
		slog.WarnContext(ctx, "schedule expiry failed", "kind", kind, "id", id, "at", at, "error", err)
	}
}
