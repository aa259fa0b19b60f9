package comment

import (
	"context"
	"strings"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/event"
)

// Emitter publishes domain events; satisfied by *event.Bus
type Emitter interface {
	Emit(ctx context.Context, name event.Name, payload any)
}

type Service struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	events   Emitter
}

func NewService(comments repository.CommentRepository, posts repository.PostRepository,
	users repository.UserRepository, events Emitter) *Service {
	return &Service{
		comments: comments,
		posts:    posts,
		users:    users,
		events:   events,
	}
}

// Create adds a comment or, with req.ParentID set, a reply to a top-level
// comment of the same post. The matching event is emitted once the comment is stored.
func (s *Service) Create(ctx context.Context, userID, postID int64, req *model.CreateCommentRequest) (*model.Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, repository.MapError(err, "post")
	}

	if req.ParentID != nil {
		parent, err := s.comments.Get(ctx, *req.ParentID)
		if err != nil {
			return nil, repository.MapError(err, "parent comment")
		}
		if parent.PostID != postID {
			return nil, apperrors.Validation("parent comment belongs to another post", nil)
		}
		if parent.IsReply() {
			return nil, apperrors.Validation("replies cannot be nested", nil)
		}
	}

	author, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, repository.MapError(err, "user")
	}

	c := &model.Comment{
		PostID:   postID,
		ParentID: req.ParentID,
		UserID:   userID,
		Nickname: author.Nickname,
		Content:  strings.TrimSpace(req.Content),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, repository.MapError(err, "comment")
	}

	name := event.CommentCreated
	if c.IsReply() {
		name = event.ReplyCreated
	}
	s.events.Emit(ctx, name, event.CommentPayload{
		PostID:      postID,
		ParentID:    c.ParentID,
		CommenterID: userID,
		Content:     c.Content,
	})
	return c, nil
}

// List returns a page of top-level comments, newest first, each with its replies
func (s *Service) List(ctx context.Context, postID int64, page model.Pagination) ([]*model.Comment, int, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, 0, repository.MapError(err, "post")
	}
	comments, total, err := s.comments.ListTopLevel(ctx, postID, page)
	if err != nil {
		return nil, 0, repository.MapError(err, "comment")
	}
	return comments, total, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, content string) (*model.Comment, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	c, err := s.comments.UpdateContent(ctx, id, strings.TrimSpace(content))
	if err != nil {
		return nil, repository.MapError(err, "comment")
	}
	return c, nil
}

// Delete removes the comment together with its replies
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	return repository.MapError(s.comments.Delete(ctx, c), "comment")
}

// ToggleLike likes the comment for userID, or removes an existing like
func (s *Service) ToggleLike(ctx context.Context, userID, id int64) (*model.CommentLikeResult, error) {
	if _, err := s.comments.Get(ctx, id); err != nil {
		return nil, repository.MapError(err, "comment")
	}
	res, err := s.comments.ToggleLike(ctx, id, userID)
	if err != nil {
		return nil, repository.MapError(err, "comment")
	}
	return res, nil
}

func (s *Service) owned(ctx context.Context, userID, id int64) (*model.Comment, error) {
	c, err := s.comments.Get(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, "comment")
	}
	if c.UserID != userID {
		return nil, apperrors.Forbidden("only the author can modify this comment")
	}
	return c, nil
}
