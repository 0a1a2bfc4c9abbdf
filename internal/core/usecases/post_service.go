package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

// PostService handles the social feed. Posts never reach the map.
type PostService struct {
	posts ports.PostRepository
}

// NewPostService creates a new PostService.
func NewPostService(posts ports.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// Feed returns the newest posts first.
func (s *PostService) Feed(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	if offset < 0 {
		offset = 0
	}
	return s.posts.Feed(ctx, clampLimit(limit, 20, 100), offset)
}

// Create stores a post written by actor.
func (s *PostService) Create(ctx context.Context, actor string, post *domain.Post) error {
	post.ID = ""
	post.AuthorID = actor
	if err := post.Validate(); err != nil {
		return err
	}
	if err := s.posts.Save(ctx, post); err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

// Delete removes a post written by actor.
func (s *PostService) Delete(ctx context.Context, actor, id string) error {
	existing, err := s.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	if actor != "" && existing.AuthorID != actor {
		return domain.ErrForbidden
	}
	return s.posts.Destroy(ctx, id)
}
