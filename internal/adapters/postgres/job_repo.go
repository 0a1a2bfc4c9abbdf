package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

const jobColumns = `j.id::text, j.title, j.description, j.category, j.vessel_name, j.rate, j.currency,
	COALESCE(j.location_id::text, ''), j.posted_by, j.starts_at, j.closes_at, j.created_at`

// includedLocationColumns are appended when the location relation is included.
const includedLocationColumns = `, l.id::text, l.name, l.country, l.longitude, l.latitude, l.created_at`

// JobRepo implements ports.JobRepository with pgx.
type JobRepo struct {
	db *DB
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

// joinedLocation receives the nullable columns of a LEFT JOINed location.
type joinedLocation struct {
	id, name, country *string
	lon, lat          *float64
	createdAt         *time.Time
}

func (j *joinedLocation) targets() []any {
	return []any{&j.id, &j.name, &j.country, &j.lon, &j.lat, &j.createdAt}
}

// location returns nil when the join found no row.
func (j *joinedLocation) location() *domain.Location {
	if j.id == nil {
		return nil
	}
	l := &domain.Location{ID: *j.id, Longitude: j.lon, Latitude: j.lat}
	if j.name != nil {
		l.Name = *j.name
	}
	if j.country != nil {
		l.Country = *j.country
	}
	if j.createdAt != nil {
		l.CreatedAt = *j.createdAt
	}
	return l
}

func jobSelect(withLocation bool) string {
	if withLocation {
		return `SELECT ` + jobColumns + includedLocationColumns + `
		FROM jobs j LEFT JOIN locations l ON l.id = j.location_id`
	}
	return `SELECT ` + jobColumns + ` FROM jobs j`
}

func scanJob(row pgx.Row, withLocation bool) (*domain.Job, error) {
	var j domain.Job
	targets := []any{
		&j.ID, &j.Title, &j.Description, &j.Category, &j.VesselName, &j.Rate, &j.Currency,
		&j.LocationID, &j.PostedBy, &j.StartsAt, &j.ClosesAt, &j.CreatedAt,
	}
	var loc joinedLocation
	if withLocation {
		targets = append(targets, loc.targets()...)
	}
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	j.Location = loc.location()
	return &j, nil
}

// Find lists jobs, newest first.
func (r *JobRepo) Find(ctx context.Context, f domain.JobFilter) ([]domain.Job, error) {
	withLocation := domain.Includes(f.Include, "location")

	w := &where{}
	if f.Category != "" {
		w.add("j.category = ?", f.Category)
	}
	if f.PostedBy != "" {
		w.add("j.posted_by = ?", f.PostedBy)
	}
	query := fmt.Sprintf("%s %s ORDER BY j.created_at DESC, j.id LIMIT %s OFFSET %s",
		jobSelect(withLocation), w, w.next(f.Limit), w.next(f.Offset))

	rows, err := r.db.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows, withLocation)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// Get returns a job by id.
func (r *JobRepo) Get(ctx context.Context, id string, include ...string) (*domain.Job, error) {
	if len(validIDs(id)) == 0 {
		return nil, domain.ErrNotFound
	}
	withLocation := domain.Includes(include, "location")
	j, err := scanJob(r.db.Pool.QueryRow(ctx, jobSelect(withLocation)+` WHERE j.id = $1::uuid`, id), withLocation)
	if err != nil {
		return nil, notFound(err)
	}
	return j, nil
}

const upsertJob = `
	INSERT INTO jobs (id, title, description, category, vessel_name, rate, currency,
	                  location_id, posted_by, starts_at, closes_at)
	VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7,
	        NULLIF($8, '')::uuid, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title, description = EXCLUDED.description,
	    category = EXCLUDED.category, vessel_name = EXCLUDED.vessel_name,
	    rate = EXCLUDED.rate, currency = EXCLUDED.currency,
	    location_id = EXCLUDED.location_id,
	    starts_at = EXCLUDED.starts_at, closes_at = EXCLUDED.closes_at
	RETURNING id::text, created_at
`

func jobArgs(j *domain.Job) []any {
	return []any{
		j.ID, j.Title, j.Description, j.Category, j.VesselName, j.Rate, j.Currency,
		j.LocationID, j.PostedBy, j.StartsAt, j.ClosesAt,
	}
}

// Save inserts or updates a job, filling in its id and created_at.
func (r *JobRepo) Save(ctx context.Context, j *domain.Job) error {
	return r.db.Pool.QueryRow(ctx, upsertJob, jobArgs(j)...).Scan(&j.ID, &j.CreatedAt)
}

// SaveBatch upserts many jobs using pgx.Batch.
func (r *JobRepo) SaveBatch(ctx context.Context, jobs []domain.Job) error {
	batch := &pgx.Batch{}
	for i := range jobs {
		batch.Queue(upsertJob, jobArgs(&jobs[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range jobs {
		if err := br.QueryRow().Scan(&jobs[i].ID, &jobs[i].CreatedAt); err != nil {
			return fmt.Errorf("batch job %d: %w", i, err)
		}
	}
	return nil
}

// Destroy deletes a job.
func (r *JobRepo) Destroy(ctx context.Context, id string) error {
	if len(validIDs(id)) == 0 {
		return domain.ErrNotFound
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
