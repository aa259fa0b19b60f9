package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/event"
	"github.com/jwalitptl/memory-api/pkg/logger"
	"github.com/jwalitptl/memory-api/pkg/metrics"
)

const (
	TitleCommentCreated = "📢 내 추억 글에 새로운 댓글이 달렸어요!"
	TitleReplyCreated   = "📢 내 댓글에 새로운 답글이 달렸어요!"

	reasonSelf          = "self"
	reasonPostMissing   = "post_not_found"
	reasonParentMissing = "parent_not_found"
)

// Pusher delivers a frame to a user's open live channels
type Pusher interface {
	SendToUser(userID int64, data any) (int, error)
}

// Repositories groups the stores the service reads and writes
type Repositories struct {
	Users         repository.UserRepository
	Posts         repository.PostRepository
	Comments      repository.CommentRepository
	Notifications repository.NotificationRepository
}

type Service struct {
	repos   Repositories
	pusher  Pusher
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repos Repositories, pusher Pusher, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Service{repos: repos, pusher: pusher, log: log, metrics: m}
}

// Register subscribes the service to comment and reply events
func (s *Service) Register(bus *event.Bus) {
	bus.On(event.CommentCreated, s.handleCommentCreated)
	bus.On(event.ReplyCreated, s.handleReplyCreated)
}

func payloadOf(evt event.Event) (event.CommentPayload, error) {
	switch p := evt.Payload.(type) {
	case event.CommentPayload:
		return p, nil
	case *event.CommentPayload:
		if p != nil {
			return *p, nil
		}
	}
	return event.CommentPayload{}, fmt.Errorf("unexpected payload %T for %s", evt.Payload, evt.Name)
}

// handleCommentCreated notifies the post author about a new top-level comment
func (s *Service) handleCommentCreated(ctx context.Context, evt event.Event) error {
	p, err := payloadOf(evt)
	if err != nil {
		return err
	}

	post, err := s.repos.Posts.Get(ctx, p.PostID)
	if errors.Is(err, repository.ErrNotFound) {
		s.suppress(reasonPostMissing, evt, p)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load post %d: %w", p.PostID, err)
	}

	if post.AuthorID == p.CommenterID {
		s.suppress(reasonSelf, evt, p)
		return nil
	}

	return s.deliver(ctx, post.AuthorID, post.Nickname, &model.Message{
		Type:    model.MessageTypeCommentCreated,
		Title:   TitleCommentCreated,
		Content: p.Content,
		PostID:  p.PostID,
	})
}

// handleReplyCreated notifies the parent comment's author about a reply
func (s *Service) handleReplyCreated(ctx context.Context, evt event.Event) error {
	p, err := payloadOf(evt)
	if err != nil {
		return err
	}
	if p.ParentID == nil {
		s.suppress(reasonParentMissing, evt, p)
		return nil
	}

	parent, err := s.repos.Comments.Get(ctx, *p.ParentID)
	if errors.Is(err, repository.ErrNotFound) {
		s.suppress(reasonParentMissing, evt, p)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load comment %d: %w", *p.ParentID, err)
	}

	if _, err := s.repos.Posts.Get(ctx, p.PostID); errors.Is(err, repository.ErrNotFound) {
		s.suppress(reasonPostMissing, evt, p)
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to load post %d: %w", p.PostID, err)
	}

	if parent.UserID == p.CommenterID {
		s.suppress(reasonSelf, evt, p)
		return nil
	}

	return s.deliver(ctx, parent.UserID, parent.Nickname, &model.Message{
		Type:    model.MessageTypeReplyCreated,
		Title:   TitleReplyCreated,
		Content: p.Content,
		PostID:  p.PostID,
	})
}

// deliver persists msg for recipient and pushes it live. fallbackName is used
// when the recipient's current nickname cannot be read.
func (s *Service) deliver(ctx context.Context, recipient int64, fallbackName string, msg *model.Message) error {
	n, err := s.repos.Notifications.CreateWithNotification(ctx, msg, recipient)
	if err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(msg.Type)).Inc()

	name := fallbackName
	if user, err := s.repos.Users.Get(ctx, recipient); err == nil {
		name = user.Nickname
	} else {
		s.log.Warn("Recipient lookup failed, using stored nickname", "user_id", recipient, "error", err.Error())
	}

	live := model.LiveMessage{
		MessageID:      msg.ID,
		Type:           msg.Type,
		Title:          msg.Title,
		Content:        msg.Content,
		PostID:         msg.PostID,
		CreatedAt:      msg.CreatedAt,
		NotificationID: n.ID,
		ReceiverName:   name,
	}
	delivered, err := s.pusher.SendToUser(recipient, live)
	if err != nil {
		s.log.Error(err, "Live push failed", "user_id", recipient, "notification_id", n.ID)
		return nil
	}

	s.log.Info("Notification created",
		"type", string(msg.Type),
		"user_id", recipient,
		"post_id", msg.PostID,
		"notification_id", n.ID,
		"live_channels", delivered,
	)
	return nil
}

func (s *Service) suppress(reason string, evt event.Event, p event.CommentPayload) {
	s.metrics.NotificationsSuppressed.WithLabelValues(reason).Inc()
	s.log.Debug("Notification suppressed",
		"reason", reason,
		"event", string(evt.Name),
		"post_id", p.PostID,
		"commenter_id", p.CommenterID,
	)
}

// List returns the user's notifications, newest first
func (s *Service) List(ctx context.Context, userID int64, page model.Pagination) ([]*model.Notification, int, error) {
	items, total, err := s.repos.Notifications.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, 0, repository.MapError(err, "notification")
	}
	return items, total, nil
}

// Delete removes one notification owned by userID. Its message is kept.
func (s *Service) Delete(ctx context.Context, userID, notificationID int64) error {
	n, err := s.repos.Notifications.Get(ctx, notificationID)
	if err != nil {
		return repository.MapError(err, "notification")
	}
	if n.UserID != userID {
		return apperrors.Forbidden("cannot delete another user's notification")
	}
	return repository.MapError(s.repos.Notifications.Delete(ctx, notificationID), "notification")
}

// DeleteAll removes every notification of userID and returns how many were removed
func (s *Service) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repos.Notifications.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, repository.MapError(err, "notification")
	}
	return n, nil
}
