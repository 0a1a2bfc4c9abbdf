package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

const locationColumns = `id::text, name, country, longitude, latitude, created_at`

// LocationRepo implements ports.LocationRepository with pgx.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func scanLocation(row pgx.Row) (*domain.Location, error) {
	var l domain.Location
	if err := row.Scan(&l.ID, &l.Name, &l.Country, &l.Longitude, &l.Latitude, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Get returns a location by id.
func (r *LocationRepo) Get(ctx context.Context, id string) (*domain.Location, error) {
	if len(validIDs(id)) == 0 {
		return nil, domain.ErrNotFound
	}
	l, err := scanLocation(r.db.Pool.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

// GetByIDs returns the locations that exist among ids, in arbitrary order.
func (r *LocationRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Location, error) {
	ids = validIDs(ids...)
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// Search performs a trigram similarity search on location names.
func (r *LocationRepo) Search(ctx context.Context, name string, limit int) ([]domain.Location, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+locationColumns+`
		FROM locations
		WHERE name ILIKE '%' || $1 || '%' OR name % $1
		ORDER BY similarity(name, $1) DESC, name
		LIMIT $2
	`, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

const upsertLocation = `
	INSERT INTO locations (id, name, country, longitude, latitude)
	VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, country = EXCLUDED.country,
	    longitude = EXCLUDED.longitude, latitude = EXCLUDED.latitude
	RETURNING id::text, created_at
`

// Save inserts or updates a location, filling in its id and created_at.
func (r *LocationRepo) Save(ctx context.Context, l *domain.Location) error {
	return r.db.Pool.QueryRow(ctx, upsertLocation,
		l.ID, l.Name, l.Country, l.Longitude, l.Latitude,
	).Scan(&l.ID, &l.CreatedAt)
}

// SaveBatch upserts many locations using pgx.Batch. Generated ids are written back.
func (r *LocationRepo) SaveBatch(ctx context.Context, locs []domain.Location) error {
	batch := &pgx.Batch{}
	for _, l := range locs {
		batch.Queue(upsertLocation, l.ID, l.Name, l.Country, l.Longitude, l.Latitude)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range locs {
		var created time.Time
		if err := br.QueryRow().Scan(&locs[i].ID, &created); err != nil {
			return fmt.Errorf("batch location %d: %w", i, err)
		}
		locs[i].CreatedAt = created
	}
	return nil
}
