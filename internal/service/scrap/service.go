package scrap

import (
	"context"
	"errors"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
)

type Service struct {
	scraps repository.ScrapRepository
	posts  repository.PostRepository
}

func NewService(scraps repository.ScrapRepository, posts repository.PostRepository) *Service {
	return &Service{scraps: scraps, posts: posts}
}

// Toggle bookmarks the post for userID, or removes the bookmark. It reports
// whether the post is scrapped afterwards.
func (s *Service) Toggle(ctx context.Context, userID, postID int64) (bool, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return false, repository.MapError(err, "post")
	}
	scrapped, err := s.scraps.Toggle(ctx, userID, postID)
	if err != nil {
		return false, repository.MapError(err, "scrap")
	}
	return scrapped, nil
}

func (s *Service) IsScrapped(ctx context.Context, userID, postID int64) (bool, error) {
	ok, err := s.scraps.Exists(ctx, userID, postID)
	if err != nil {
		return false, repository.MapError(err, "scrap")
	}
	return ok, nil
}

func (s *Service) List(ctx context.Context, userID int64, filter model.ScrapFilter) ([]*model.Scrap, int, error) {
	items, total, err := s.scraps.List(ctx, userID, filter)
	if err != nil {
		return nil, 0, repository.MapError(err, "scrap")
	}
	return items, total, nil
}

// Detail returns a scrapped post; NotFound when the user has not scrapped it
func (s *Service) Detail(ctx context.Context, userID, postID int64) (*model.Post, error) {
	post, err := s.scraps.GetPost(ctx, userID, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("scrap", err)
	}
	if err != nil {
		return nil, repository.MapError(err, "scrap")
	}
	return post, nil
}
