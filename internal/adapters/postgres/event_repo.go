package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

const eventColumns = `e.id::text, e.title, e.description, e.category,
	COALESCE(e.location_id::text, ''), e.host_id, e.starts_at, e.ends_at, e.created_at`

// EventRepo implements ports.EventRepository with pgx.
type EventRepo struct {
	db *DB
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

func eventSelect(withLocation bool) string {
	if withLocation {
		return `SELECT ` + eventColumns + includedLocationColumns + `
		FROM events e LEFT JOIN locations l ON l.id = e.location_id`
	}
	return `SELECT ` + eventColumns + ` FROM events e`
}

func scanEvent(row pgx.Row, withLocation bool) (*domain.Event, error) {
	var e domain.Event
	targets := []any{
		&e.ID, &e.Title, &e.Description, &e.Category,
		&e.LocationID, &e.HostID, &e.StartsAt, &e.EndsAt, &e.CreatedAt,
	}
	var loc joinedLocation
	if withLocation {
		targets = append(targets, loc.targets()...)
	}
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	e.Location = loc.location()
	return &e, nil
}

// Find lists events in start order.
func (r *EventRepo) Find(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	withLocation := domain.Includes(f.Include, "location")

	w := &where{}
	if f.Category != "" {
		w.add("e.category = ?", f.Category)
	}
	if f.HostID != "" {
		w.add("e.host_id = ?", f.HostID)
	}
	if f.After != nil {
		w.add("COALESCE(e.ends_at, e.starts_at) >= ?", *f.After)
	}
	query := fmt.Sprintf("%s %s ORDER BY e.starts_at, e.id LIMIT %s OFFSET %s",
		eventSelect(withLocation), w, w.next(f.Limit), w.next(f.Offset))

	rows, err := r.db.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows, withLocation)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Get returns an event by id.
func (r *EventRepo) Get(ctx context.Context, id string, include ...string) (*domain.Event, error) {
	if len(validIDs(id)) == 0 {
		return nil, domain.ErrNotFound
	}
	withLocation := domain.Includes(include, "location")
	e, err := scanEvent(r.db.Pool.QueryRow(ctx, eventSelect(withLocation)+` WHERE e.id = $1::uuid`, id), withLocation)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

const upsertEvent = `
	INSERT INTO events (id, title, description, category, location_id, host_id, starts_at, ends_at)
	VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4,
	        NULLIF($5, '')::uuid, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title, description = EXCLUDED.description,
	    category = EXCLUDED.category, location_id = EXCLUDED.location_id,
	    starts_at = EXCLUDED.starts_at, ends_at = EXCLUDED.ends_at
	RETURNING id::text, created_at
`

func eventArgs(e *domain.Event) []any {
	return []any{e.ID, e.Title, e.Description, e.Category, e.LocationID, e.HostID, e.StartsAt, e.EndsAt}
}

// Save inserts or updates an event, filling in its id and created_at.
func (r *EventRepo) Save(ctx context.Context, e *domain.Event) error {
	return r.db.Pool.QueryRow(ctx, upsertEvent, eventArgs(e)...).Scan(&e.ID, &e.CreatedAt)
}

// SaveBatch upserts many events using pgx.Batch.
func (r *EventRepo) SaveBatch(ctx context.Context, events []domain.Event) error {
	batch := &pgx.Batch{}
	for i := range events {
		batch.Queue(upsertEvent, eventArgs(&events[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range events {
		if err := br.QueryRow().Scan(&events[i].ID, &events[i].CreatedAt); err != nil {
			return fmt.Errorf("batch event %d: %w", i, err)
		}
	}
	return nil
}

// Destroy deletes an event.
func (r *EventRepo) Destroy(ctx context.Context, id string) error {
	if len(validIDs(id)) == 0 {
		return domain.ErrNotFound
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
