package group

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	"github.com/jwalitptl/memory-api/internal/service/badge"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/logger"
	"github.com/jwalitptl/memory-api/pkg/security"
	"github.com/jwalitptl/memory-api/pkg/storage"
)

const (
	MaxImageSize = 10 << 20
	imagePrefix  = "group_images"
)

type Service struct {
	repo      repository.GroupRepository
	store     storage.Storage
	hasher    security.PasswordHasher
	evaluator badge.Evaluator
	log       *logger.Logger
	now       func() time.Time
}

func NewService(repo repository.GroupRepository, store storage.Storage, hasher security.PasswordHasher,
	evaluator badge.Evaluator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		store:     store,
		hasher:    hasher,
		evaluator: evaluator,
		log:       log,
		now:       time.Now,
	}
}

// Create registers a group with userID as its admin
func (s *Service) Create(ctx context.Context, userID int64, in *model.CreateGroupInput) (*model.Group, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	group := &model.Group{
		Name:         name,
		PasswordHash: hash,
		IsPublic:     in.IsPublic,
		Introduction: in.Introduction,
	}

	if in.Image != nil {
		key, err := s.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		group.ImageKey = &key
	}

	if err := s.repo.CreateWithAdmin(ctx, group, userID); err != nil {
		s.discard(ctx, group.ImageKey)
		return nil, repository.MapError(err, "group")
	}

	s.withURL(group)
	s.log.Info("Group created", "group_id", group.ID, "admin_id", userID)
	return group, nil
}

// List returns group summaries. Private groups never expose their image.
func (s *Service) List(ctx context.Context, filter model.GroupFilter) ([]*model.GroupSummary, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, repository.MapError(err, "group")
	}

	now := s.now()
	out := make([]*model.GroupSummary, 0, len(items))
	for _, it := range items {
		summary := &model.GroupSummary{
			GroupID:    it.ID,
			GroupName:  it.Name,
			IsPublic:   it.IsPublic,
			DDay:       model.DDay(it.CreatedAt, now),
			PostCount:  it.PostCount,
			LikeCount:  it.PostLikeCount,
			BadgeCount: it.BadgeCount,
		}
		if it.IsPublic && it.ImageKey != nil {
			url := s.store.URL(*it.ImageKey)
			summary.ImageURL = &url
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.GroupDetail, error) {
	group, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, "group")
	}
	stats, err := s.repo.Stats(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, "group")
	}

	s.withURL(group)
	return &model.GroupDetail{
		Group:       group,
		DDay:        model.DDay(group.CreatedAt, s.now()),
		MemberCount: stats.MemberCount,
		PostCount:   stats.PostCount,
		LikeCount:   stats.PostLikeCount,
	}, nil
}

// Update applies a partial update. A new image replaces the stored one.
func (s *Service) Update(ctx context.Context, userID, id int64, in *model.UpdateGroupInput) (*model.Group, error) {
	group, err := s.adminGroup(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != group.Name {
			if err := s.checkName(ctx, name); err != nil {
				return nil, err
			}
			group.Name = name
		}
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		group.PasswordHash = hash
	}
	if in.IsPublic != nil {
		group.IsPublic = *in.IsPublic
	}
	if in.Introduction != nil {
		group.Introduction = *in.Introduction
	}

	oldKey := group.ImageKey
	if in.Image != nil {
		key, err := s.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		group.ImageKey = &key
	}

	if err := s.repo.Update(ctx, group); err != nil {
		if in.Image != nil {
			s.discard(ctx, group.ImageKey)
		}
		return nil, repository.MapError(err, "group")
	}
	if in.Image != nil {
		s.discard(ctx, oldKey)
	}

	s.withURL(group)
	return group, nil
}

func (s *Service) DeleteImage(ctx context.Context, userID, id int64) error {
	group, err := s.adminGroup(ctx, userID, id)
	if err != nil {
		return err
	}
	if group.ImageKey == nil {
		return apperrors.NotFound("group image", nil)
	}

	oldKey := group.ImageKey
	group.ImageKey = nil
	if err := s.repo.Update(ctx, group); err != nil {
		return repository.MapError(err, "group")
	}
	s.discard(ctx, oldKey)
	return nil
}

// Delete removes the group and everything in it
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	group, err := s.adminGroup(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return repository.MapError(err, "group")
	}
	s.discard(ctx, group.ImageKey)
	s.log.Info("Group deleted", "group_id", id, "user_id", userID)
	return nil
}

func (s *Service) IsPublic(ctx context.Context, id int64) (bool, error) {
	group, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, repository.MapError(err, "group")
	}
	return group.IsPublic, nil
}

func (s *Service) VerifyPassword(ctx context.Context, id int64, password string) error {
	group, err := s.repo.Get(ctx, id)
	if err != nil {
		return repository.MapError(err, "group")
	}
	if err := s.hasher.Compare(group.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrMismatch) {
			return apperrors.Unauthorized("wrong group password")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// Join adds userID as a member and re-evaluates the group's badges
func (s *Service) Join(ctx context.Context, userID, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return repository.MapError(err, "group")
	}

	member := &model.GroupMember{GroupID: id, UserID: userID, Role: model.MemberRoleMember}
	if err := s.repo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return apperrors.Conflict("already a member of this group", err)
		}
		return repository.MapError(err, "group")
	}

	_, err := s.evaluator.Evaluate(ctx, id)
	return err
}

func (s *Service) Leave(ctx context.Context, userID, id int64) error {
	err := s.repo.RemoveMember(ctx, id, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.Validation("not a member of this group", err)
	case errors.Is(err, repository.ErrLastAdmin):
		return apperrors.Validation("the last admin cannot leave the group", err)
	}
	return repository.MapError(err, "group")
}

// Like increments the group's like count and re-evaluates its badges
func (s *Service) Like(ctx context.Context, id int64) error {
	if err := s.repo.IncrementLikes(ctx, id); err != nil {
		return repository.MapError(err, "group")
	}
	_, err := s.evaluator.Evaluate(ctx, id)
	return err
}

// RequireMember fails with Forbidden unless userID belongs to the group
func (s *Service) RequireMember(ctx context.Context, userID, groupID int64) (*model.GroupMember, error) {
	if _, err := s.repo.Get(ctx, groupID); err != nil {
		return nil, repository.MapError(err, "group")
	}
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("not a member of this group")
	}
	if err != nil {
		return nil, repository.MapError(err, "group member")
	}
	return member, nil
}

func (s *Service) adminGroup(ctx context.Context, userID, id int64) (*model.Group, error) {
	group, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.MapError(err, "group")
	}
	member, err := s.repo.GetMember(ctx, id, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, repository.MapError(err, "group member")
	}
	if err != nil || member.Role != model.MemberRoleAdmin {
		return nil, apperrors.Forbidden("group admin only")
	}
	return group, nil
}

func (s *Service) checkName(ctx context.Context, name string) error {
	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return repository.MapError(err, "group")
	}
	if exists {
		return apperrors.Conflict("group name already in use", nil)
	}
	return nil
}

func (s *Service) upload(ctx context.Context, img *model.Image) (string, error) {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", apperrors.Validation("only image files are allowed", nil)
	}
	if img.Size > MaxImageSize || int64(len(img.Data)) > MaxImageSize {
		return "", apperrors.Validation("image must be 10MB or smaller", nil)
	}

	key := fmt.Sprintf("%s/%d-%s", imagePrefix, s.now().UnixMilli(), path.Base(img.Filename))
	if err := s.store.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType); err != nil {
		return "", apperrors.Dependency("failed to upload image", err)
	}
	return key, nil
}

// discard removes an object that is no longer referenced. Failures only leave an orphan.
func (s *Service) discard(ctx context.Context, key *string) {
	if key == nil {
		return
	}
	if err := s.store.Delete(ctx, *key); err != nil {
		s.log.Error(err, "Failed to delete group image", "key", *key)
	}
}

func (s *Service) withURL(g *model.Group) {
	if g.ImageKey == nil {
		g.ImageURL = nil
		return
	}
	url := s.store.URL(*g.ImageKey)
	g.ImageURL = &url
}
