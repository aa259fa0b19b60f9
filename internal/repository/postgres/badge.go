package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
)

type badgeRepository struct {
	BaseRepository
}

func NewBadgeRepository(base BaseRepository) repository.BadgeRepository {
	return &badgeRepository{base}
}

func (r *badgeRepository) ListByGroup(ctx context.Context, groupID int64) ([]*model.Badge, error) {
	badges := []*model.Badge{}
	err := r.db.SelectContext(ctx, &badges,
		`SELECT * FROM badges WHERE group_id = $1 ORDER BY created_at ASC, id ASC`, groupID)
	if err != nil {
		return nil, wrapErr("list badges", err)
	}
	return badges, nil
}

func (r *badgeRepository) Award(ctx context.Context, badge *model.Badge) (awarded bool, err error) {
	defer func(start time.Time) { r.observe("badge_award", start, err) }(time.Now())

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := tx.QueryxContext(ctx, `
			INSERT INTO badges (group_id, badge_type, badge_name, badge_image_url)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (group_id, badge_type) DO NOTHING
			RETURNING id, created_at`,
			badge.GroupID, badge.BadgeType, badge.BadgeName, badge.ImageURL)
		if err != nil {
			return wrapErr("award badge", err)
		}
		if rows.Next() {
			awarded = true
			if err := rows.Scan(&badge.ID, &badge.CreatedAt); err != nil {
				rows.Close()
				return wrapErr("award badge", err)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return wrapErr("award badge", err)
		}
		if !awarded {
			return nil
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE groups SET badge_count = badge_count + 1 WHERE id = $1`, badge.GroupID)
		if err != nil {
			return wrapErr("count badge", err)
		}
		return mustAffect("count badge", res)
	})
	if err != nil {
		return false, err
	}
	return awarded, nil
}
