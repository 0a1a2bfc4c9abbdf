package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// PostRepo implements ports.PostRepository with pgx.
type PostRepo struct {
	db *DB
}

// NewPostRepo creates a new PostRepo.
func NewPostRepo(db *DB) *PostRepo {
	return &PostRepo{db: db}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Body, &p.ImageURL, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Feed returns posts newest first.
func (r *PostRepo) Feed(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, author_id, body, image_url, created_at
		FROM posts
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// Get returns a post by id.
func (r *PostRepo) Get(ctx context.Context, id string) (*domain.Post, error) {
	if len(validIDs(id)) == 0 {
		return nil, domain.ErrNotFound
	}
	p, err := scanPost(r.db.Pool.QueryRow(ctx, `
		SELECT id::text, author_id, body, image_url, created_at FROM posts WHERE id = $1::uuid
	`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// Save inserts a post, filling in its id and created_at.
func (r *PostRepo) Save(ctx context.Context, p *domain.Post) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, body, image_url)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, image_url = EXCLUDED.image_url
		RETURNING id::text, created_at
	`, p.ID, p.AuthorID, p.Body, p.ImageURL).Scan(&p.ID, &p.CreatedAt)
}

// Destroy deletes a post.
func (r *PostRepo) Destroy(ctx context.Context, id string) error {
	if len(validIDs(id)) == 0 {
		return domain.ErrNotFound
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM posts WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
