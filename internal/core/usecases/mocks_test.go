package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// --- Mock JobRepository ---

type mockJobRepo struct {
	findFn    func(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	getFn     func(ctx context.Context, id string, include ...string) (*domain.Job, error)
	saveFn    func(ctx context.Context, job *domain.Job) error
	destroyFn func(ctx context.Context, id string) error
}

func (m *mockJobRepo) Find(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	if m.findFn != nil {
		return m.findFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockJobRepo) Get(ctx context.Context, id string, include ...string) (*domain.Job, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id, include...)
	}
	return nil, domain.ErrNotFound
}

func (m *mockJobRepo) Save(ctx context.Context, job *domain.Job) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, job)
	}
	if job.ID == "" {
		job.ID = "generated"
	}
	return nil
}

func (m *mockJobRepo) SaveBatch(ctx context.Context, jobs []domain.Job) error { return nil }

func (m *mockJobRepo) Destroy(ctx context.Context, id string) error {
	if m.destroyFn != nil {
		return m.destroyFn(ctx, id)
	}
	return nil
}

// --- Mock EventRepository ---

type mockEventRepo struct {
	findFn    func(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	getFn     func(ctx context.Context, id string, include ...string) (*domain.Event, error)
	destroyFn func(ctx context.Context, id string) error
}

func (m *mockEventRepo) Find(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	if m.findFn != nil {
		return m.findFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockEventRepo) Get(ctx context.Context, id string, include ...string) (*domain.Event, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id, include...)
	}
	return nil, domain.ErrNotFound
}

func (m *mockEventRepo) Save(ctx context.Context, event *domain.Event) error {
	if event.ID == "" {
		event.ID = "generated"
	}
	return nil
}

func (m *mockEventRepo) SaveBatch(ctx context.Context, events []domain.Event) error { return nil }

func (m *mockEventRepo) Destroy(ctx context.Context, id string) error {
	if m.destroyFn != nil {
		return m.destroyFn(ctx, id)
	}
	return nil
}

// --- Mock PostRepository ---

type mockPostRepo struct {
	feedFn    func(ctx context.Context, limit, offset int) ([]domain.Post, error)
	getFn     func(ctx context.Context, id string) (*domain.Post, error)
	destroyed []string
}

func (m *mockPostRepo) Feed(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	if m.feedFn != nil {
		return m.feedFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockPostRepo) Get(ctx context.Context, id string) (*domain.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPostRepo) Save(ctx context.Context, post *domain.Post) error {
	post.ID = "p1"
	return nil
}

func (m *mockPostRepo) Destroy(ctx context.Context, id string) error {
	m.destroyed = append(m.destroyed, id)
	return nil
}

// --- Mock LocationRepository ---

type mockLocationRepo struct {
	getByIDsFn func(ctx context.Context, ids []string) ([]domain.Location, error)
	searchFn   func(ctx context.Context, name string, limit int) ([]domain.Location, error)
	saved      []domain.Location
}

func (m *mockLocationRepo) Get(ctx context.Context, id string) (*domain.Location, error) {
	return nil, domain.ErrNotFound
}

func (m *mockLocationRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Location, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockLocationRepo) Search(ctx context.Context, name string, limit int) ([]domain.Location, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, name, limit)
	}
	return nil, nil
}

func (m *mockLocationRepo) Save(ctx context.Context, loc *domain.Location) error {
	m.saved = append(m.saved, *loc)
	return nil
}

func (m *mockLocationRepo) SaveBatch(ctx context.Context, locs []domain.Location) error { return nil }

// --- Mock CacheService (in-memory) ---

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	changes []domain.RecordChange
	err     error
}

func (m *mockPublisher) PublishRecordChange(ctx context.Context, change domain.RecordChange) error {
	m.changes = append(m.changes, change)
	return m.err
}

// --- Mock ExpiryScheduler ---

type scheduled struct {
	kind domain.FeatureKind
	id   string
	at   time.Time
}

type mockScheduler struct {
	calls []scheduled
	err   error
}

func (m *mockScheduler) ScheduleExpiry(ctx context.Context, kind domain.FeatureKind, id string, at time.Time) error {
	m.calls = append(m.calls, scheduled{kind, id, at})
	return m.err
}

func fptr(f float64) *float64 { return &f }

func located(id string, lon, lat float64) *domain.Location {
	return &domain.Location{ID: id, Name: id, Longitude: fptr(lon), Latitude: fptr(lat)}
}
