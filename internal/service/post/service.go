package post

import (
	"context"
	"errors"
	"strings"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	"github.com/jwalitptl/memory-api/internal/service/badge"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
)

type Service struct {
	posts     repository.PostRepository
	groups    repository.GroupRepository
	users     repository.UserRepository
	evaluator badge.Evaluator
}

func NewService(posts repository.PostRepository, groups repository.GroupRepository,
	users repository.UserRepository, evaluator badge.Evaluator) *Service {
	return &Service{
		posts:     posts,
		groups:    groups,
		users:     users,
		evaluator: evaluator,
	}
}

// Create publishes a post in groupID. Only members may post.
func (s *Service) Create(ctx context.Context, userID, groupID int64, req *model.CreatePostRequest) (*model.Post, error) {
	if req.Moment.IsZero() {
		return nil, apperrors.Validation("moment is required", nil)
	}
	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	author, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, repository.MapError(err, "user")
	}

	post := &model.Post{
		GroupID:  groupID,
		AuthorID: userID,
		Nickname: author.Nickname,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Tags:     normalizeTags(req.Tags),
		Location: req.Location,
		Moment:   req.Moment.Time,
		IsPublic: req.IsPublic,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, repository.MapError(err, "post")
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, "post")
	}
	return post, nil
}

func (s *Service) List(ctx context.Context, groupID int64, filter model.PostFilter) ([]*model.Post, int, error) {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return nil, 0, repository.MapError(err, "group")
	}
	posts, total, err := s.posts.List(ctx, groupID, filter)
	if err != nil {
		return nil, 0, repository.MapError(err, "post")
	}
	return posts, total, nil
}

// Update edits a post. Only its author may.
func (s *Service) Update(ctx context.Context, userID, id int64, req *model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.ImageURL != nil {
		post.ImageURL = req.ImageURL
	}
	if req.Tags != nil {
		post.Tags = normalizeTags(req.Tags)
	}
	if req.Location != nil {
		post.Location = req.Location
	}
	if req.Moment != nil && !req.Moment.IsZero() {
		post.Moment = req.Moment.Time
	}
	if req.IsPublic != nil {
		post.IsPublic = *req.IsPublic
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, repository.MapError(err, "post")
	}
	return post, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return repository.MapError(s.posts.Delete(ctx, id), "post")
}

func (s *Service) IsPublic(ctx context.Context, id int64) (bool, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return post.IsPublic, nil
}

// Like increments the post's likes and re-evaluates its group's badges
func (s *Service) Like(ctx context.Context, id int64) error {
	groupID, err := s.posts.IncrementLikes(ctx, id)
	if err != nil {
		return repository.MapError(err, "post")
	}
	_, err = s.evaluator.Evaluate(ctx, groupID)
	return err
}

func (s *Service) owned(ctx context.Context, userID, id int64) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperrors.Forbidden("only the author can modify this post")
	}
	return post, nil
}

func (s *Service) requireMember(ctx context.Context, userID, groupID int64) error {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return repository.MapError(err, "group")
	}
	_, err := s.groups.GetMember(ctx, groupID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.Forbidden("only group members can post")
	}
	return repository.MapError(err, "group member")
}

// normalizeTags trims tags and drops blanks and duplicates, keeping order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
