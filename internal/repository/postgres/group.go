package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
)

type groupRepository struct {
	BaseRepository
}

func NewGroupRepository(base BaseRepository) repository.GroupRepository {
	return &groupRepository{base}
}

var groupOrder = map[string]string{
	model.GroupSortLatest:     "g.created_at DESC",
	model.GroupSortMostPosted: "post_count DESC, g.created_at DESC",
	model.GroupSortMostLiked:  "post_like_count DESC, g.created_at DESC",
	model.GroupSortMostBadge:  "g.badge_count DESC, g.created_at DESC",
}

func (r *groupRepository) CreateWithAdmin(ctx context.Context, group *model.Group, adminID int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO groups (name, password_hash, is_public, introduction, image_key)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, group_like_count, badge_count, created_at, updated_at
		`
		err := tx.QueryRowxContext(ctx, query,
			group.Name,
			group.PasswordHash,
			group.IsPublic,
			group.Introduction,
			group.ImageKey,
		).Scan(&group.ID, &group.GroupLikeCount, &group.BadgeCount, &group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			return wrapErr("create group", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)`,
			group.ID, adminID, model.MemberRoleAdmin,
		)
		return wrapErr("add group admin", err)
	})
}

func (r *groupRepository) Get(ctx context.Context, id int64) (*model.Group, error) {
	var group model.Group
	if err := r.db.GetContext(ctx, &group, `SELECT * FROM groups WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get group", err)
	}
	return &group, nil
}

func (r *groupRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM groups WHERE name = $1)`, name)
	return exists, wrapErr("check group name", err)
}

func (r *groupRepository) Update(ctx context.Context, group *model.Group) error {
	query := `
		UPDATE groups
		SET name = $1, password_hash = $2, is_public = $3, introduction = $4, image_key = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		group.Name,
		group.PasswordHash,
		group.IsPublic,
		group.Introduction,
		group.ImageKey,
		group.ID,
	).Scan(&group.UpdatedAt)
	return wrapErr("update group", err)
}

func (r *groupRepository) Delete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM group_members WHERE group_id = $1`,
			`DELETE FROM badges WHERE group_id = $1`,
			`DELETE FROM posts WHERE group_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return wrapErr("delete group children", err)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
		if err != nil {
			return wrapErr("delete group", err)
		}
		return mustAffect("delete group", res)
	})
}

func (r *groupRepository) List(ctx context.Context, filter model.GroupFilter) ([]*model.GroupListItem, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.IsPublic != nil {
		args = append(args, *filter.IsPublic)
		conds = append(conds, fmt.Sprintf("g.is_public = $%d", len(args)))
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		args = append(args, likePattern(kw))
		conds = append(conds, fmt.Sprintf("g.name ILIKE $%d", len(args)))
	}

	order, ok := groupOrder[filter.SortBy]
	if !ok {
		order = groupOrder[model.GroupSortMostLiked]
	}

	query := `
		SELECT g.*,
			COALESCE(p.post_count, 0) AS post_count,
			COALESCE(p.post_like_count, 0) AS post_like_count
		FROM groups g
		LEFT JOIN (
			SELECT group_id, COUNT(*) AS post_count, SUM(like_count) AS post_like_count
			FROM posts GROUP BY group_id
		) p ON p.group_id = g.id
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + order

	var items []*model.GroupListItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, wrapErr("list groups", err)
	}
	return items, nil
}

func (r *groupRepository) Stats(ctx context.Context, id int64) (*model.GroupStats, error) {
	query := `
		SELECT g.id AS group_id,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count,
			(SELECT COUNT(*) FROM posts p WHERE p.group_id = g.id) AS post_count,
			(SELECT COALESCE(SUM(p.like_count), 0) FROM posts p WHERE p.group_id = g.id) AS post_like_count
		FROM groups g
		WHERE g.id = $1
	`
	var stats model.GroupStats
	if err := r.db.GetContext(ctx, &stats, query, id); err != nil {
		return nil, wrapErr("get group stats", err)
	}
	return &stats, nil
}

func (r *groupRepository) Metrics(ctx context.Context, id int64) (m *model.GroupMetrics, err error) {
	defer func(start time.Time) { r.observe("group_metrics", start, err) }(time.Now())

	query := `
		SELECT g.group_like_count,
			(SELECT COALESCE(SUM(p.like_count), 0) FROM posts p WHERE p.group_id = g.id) AS post_like_count,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count,
			(SELECT COUNT(*) FROM posts p WHERE p.group_id = g.id) AS post_count
		FROM groups g
		WHERE g.id = $1
	`
	var metrics model.GroupMetrics
	if err := r.db.GetContext(ctx, &metrics, query, id); err != nil {
		return nil, wrapErr("get group metrics", err)
	}
	return &metrics, nil
}

func (r *groupRepository) IncrementLikes(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE groups SET group_like_count = group_like_count + 1 WHERE id = $1`, id)
	if err != nil {
		return wrapErr("like group", err)
	}
	return mustAffect("like group", res)
}

func (r *groupRepository) GetMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error) {
	var member model.GroupMember
	err := r.db.GetContext(ctx, &member,
		`SELECT * FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return nil, wrapErr("get group member", err)
	}
	return &member, nil
}

func (r *groupRepository) AddMember(ctx context.Context, member *model.GroupMember) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING joined_at
	`
	err := r.db.QueryRowxContext(ctx, query, member.GroupID, member.UserID, member.Role).Scan(&member.JoinedAt)
	return wrapErr("add group member", err)
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var role model.MemberRole
		err := tx.GetContext(ctx, &role,
			`SELECT role FROM group_members WHERE group_id = $1 AND user_id = $2 FOR UPDATE`, groupID, userID)
		if err != nil {
			return wrapErr("get group member", err)
		}

		if role == model.MemberRoleAdmin {
			var admins []int64
			err := tx.SelectContext(ctx, &admins,
				`SELECT user_id FROM group_members WHERE group_id = $1 AND role = $2 FOR UPDATE`,
				groupID, model.MemberRoleAdmin)
			if err != nil {
				return wrapErr("count group admins", err)
			}
			if len(admins) <= 1 {
				return repository.ErrLastAdmin
			}
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
		return wrapErr("remove group member", err)
	})
}
