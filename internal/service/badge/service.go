package badge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/logger"
	"github.com/jwalitptl/memory-api/pkg/metrics"
)

// manualCategory labels badges granted by hand in the awarded counter
const manualCategory = "MANUAL"

// Evaluator recomputes a group's badges from its current counts
type Evaluator interface {
	// Evaluate awards at most one new badge per category and returns the badges it created
	Evaluate(ctx context.Context, groupID int64) ([]*model.Badge, error)
	List(ctx context.Context, groupID int64) ([]*model.Badge, error)
}

type Service struct {
	groups  repository.GroupRepository
	badges  repository.BadgeRepository
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewService(groups repository.GroupRepository, badges repository.BadgeRepository, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Service{groups: groups, badges: badges, log: log, metrics: m}
}

func (s *Service) Evaluate(ctx context.Context, groupID int64) ([]*model.Badge, error) {
	counts, err := s.groups.Metrics(ctx, groupID)
	if err != nil {
		return nil, repository.MapError(err, "group")
	}

	existing, err := s.badges.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, repository.MapError(err, "badge")
	}
	held := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		held[b.BadgeType] = struct{}{}
	}

	var awarded []*model.Badge
	for _, category := range categories {
		tier, ok := HighestTier(category, metricFor(category, counts))
		if !ok {
			continue
		}
		if _, ok := held[tier.Type()]; ok {
			continue
		}

		b := &model.Badge{GroupID: groupID, BadgeType: tier.Type(), BadgeName: tier.Name()}
		inserted, err := s.badges.Award(ctx, b)
		if err != nil {
			return awarded, repository.MapError(fmt.Errorf("award %s: %w", tier.Type(), err), "badge")
		}
		// a concurrent evaluation got there first
		if !inserted {
			continue
		}

		s.metrics.BadgesAwarded.WithLabelValues(string(category)).Inc()
		s.log.Info("Badge awarded", "group_id", groupID, "badge_type", b.BadgeType)
		awarded = append(awarded, b)
	}
	return awarded, nil
}

func (s *Service) List(ctx context.Context, groupID int64) ([]*model.Badge, error) {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return nil, repository.MapError(err, "group")
	}
	badges, err := s.badges.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, repository.MapError(err, "badge")
	}
	return badges, nil
}

// Create grants a badge by hand. Only a group admin may do so, and a group
// holds each badge type at most once.
func (s *Service) Create(ctx context.Context, userID, groupID int64, req *model.CreateBadgeRequest) (*model.Badge, error) {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return nil, repository.MapError(err, "group")
	}
	member, err := s.groups.GetMember(ctx, groupID, userID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && member.Role != model.MemberRoleAdmin) {
		return nil, apperrors.Forbidden("group admin only")
	}
	if err != nil {
		return nil, repository.MapError(err, "group member")
	}

	badgeType := strings.TrimSpace(req.BadgeType)
	if IsTierType(badgeType) {
		return nil, apperrors.Validation("badge type is reserved for earned tiers", nil)
	}

	b := &model.Badge{
		GroupID:   groupID,
		BadgeType: badgeType,
		BadgeName: strings.TrimSpace(req.BadgeName),
		ImageURL:  req.ImageURL,
	}
	inserted, err := s.badges.Award(ctx, b)
	if err != nil {
		return nil, repository.MapError(err, "badge")
	}
	if !inserted {
		return nil, apperrors.Conflict("group already holds this badge", nil)
	}

	s.metrics.BadgesAwarded.WithLabelValues(manualCategory).Inc()
	s.log.Info("Badge granted", "group_id", groupID, "badge_type", b.BadgeType, "user_id", userID)
	return b, nil
}
