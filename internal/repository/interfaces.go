package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/memory-api/internal/model"
)

// Sentinel errors returned by every implementation
var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record already exists")
	ErrLastAdmin = errors.New("last admin cannot leave")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByClientID(ctx context.Context, clientID string) (*model.User, error)
		ExistsByClientID(ctx context.Context, clientID string) (bool, error)
		Update(ctx context.Context, user *model.User) error
	}

	GroupRepository interface {
		// CreateWithAdmin inserts the group and its creator as ADMIN member in one transaction
		CreateWithAdmin(ctx context.Context, group *model.Group, adminID int64) error
		Get(ctx context.Context, id int64) (*model.Group, error)
		ExistsByName(ctx context.Context, name string) (bool, error)
		Update(ctx context.Context, group *model.Group) error
		// Delete removes the group with its members, posts, comments and badges
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter model.GroupFilter) ([]*model.GroupListItem, error)
		Stats(ctx context.Context, id int64) (*model.GroupStats, error)
		Metrics(ctx context.Context, id int64) (*model.GroupMetrics, error)
		IncrementLikes(ctx context.Context, id int64) error

		GetMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error)
		AddMember(ctx context.Context, member *model.GroupMember) error
		// RemoveMember fails with ErrLastAdmin when the member is the group's only admin
		RemoveMember(ctx context.Context, groupID, userID int64) error
	}

	PostRepository interface {
		Create(ctx context.Context, post *model.Post) error
		Get(ctx context.Context, id int64) (*model.Post, error)
		Update(ctx context.Context, post *model.Post) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, groupID int64, filter model.PostFilter) ([]*model.Post, int, error)
		// IncrementLikes returns the id of the post's group
		IncrementLikes(ctx context.Context, id int64) (int64, error)
	}

	CommentRepository interface {
		// Create inserts the comment and bumps the post's comment count
		Create(ctx context.Context, comment *model.Comment) error
		Get(ctx context.Context, id int64) (*model.Comment, error)
		UpdateContent(ctx context.Context, id int64, content string) (*model.Comment, error)
		// Delete removes the comment with its replies and likes
		Delete(ctx context.Context, comment *model.Comment) error
		ListTopLevel(ctx context.Context, postID int64, page model.Pagination) ([]*model.Comment, int, error)
		ToggleLike(ctx context.Context, commentID, userID int64) (*model.CommentLikeResult, error)
	}

	NotificationRepository interface {
		// CreateWithNotification inserts msg and a notification for userID in one transaction
		CreateWithNotification(ctx context.Context, msg *model.Message, userID int64) (*model.Notification, error)
		Get(ctx context.Context, id int64) (*model.Notification, error)
		ListByUser(ctx context.Context, userID int64, page model.Pagination) ([]*model.Notification, int, error)
		Delete(ctx context.Context, id int64) error
		DeleteAllByUser(ctx context.Context, userID int64) (int64, error)
		DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	}

	BadgeRepository interface {
		ListByGroup(ctx context.Context, groupID int64) ([]*model.Badge, error)
		// Award inserts badge unless the group already holds that tier. The group's
		// badge count is incremented only when a row was inserted.
		Award(ctx context.Context, badge *model.Badge) (bool, error)
	}

	ScrapRepository interface {
		// Toggle adds or removes the bookmark and reports whether it now exists
		Toggle(ctx context.Context, userID, postID int64) (bool, error)
		Exists(ctx context.Context, userID, postID int64) (bool, error)
		List(ctx context.Context, userID int64, filter model.ScrapFilter) ([]*model.Scrap, int, error)
		GetPost(ctx context.Context, userID, postID int64) (*model.Post, error)
	}
)
