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

type scrapRepository struct {
	BaseRepository
}

func NewScrapRepository(base BaseRepository) repository.ScrapRepository {
	return &scrapRepository{base}
}

var scrapOrder = map[string]string{
	model.PostSortLatest:        "s.created_at DESC",
	model.PostSortMostLiked:     "p.like_count DESC, s.created_at DESC",
	model.PostSortMostCommented: "p.comment_count DESC, s.created_at DESC",
}

type scrapRow struct {
	ScrapID        int64     `db:"scrap_id"`
	ScrapUserID    int64     `db:"scrap_user_id"`
	ScrapCreatedAt time.Time `db:"scrap_created_at"`
	model.Post
}

func (r *scrapRepository) Toggle(ctx context.Context, userID, postID int64) (bool, error) {
	var scrapped bool
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM scraps WHERE user_id = $1 AND post_id = $2`, userID, postID)
		if err != nil {
			return wrapErr("remove scrap", err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return wrapErr("remove scrap", err)
		}
		if removed > 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO scraps (user_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, postID)
		if err != nil {
			return wrapErr("add scrap", err)
		}
		scrapped = true
		return nil
	})
	return scrapped, err
}

func (r *scrapRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM scraps WHERE user_id = $1 AND post_id = $2)`, userID, postID)
	return exists, wrapErr("check scrap", err)
}

func (r *scrapRepository) List(ctx context.Context, userID int64, filter model.ScrapFilter) ([]*model.Scrap, int, error) {
	page := filter.Pagination.Normalize()
	conds, args := postConditions([]interface{}{userID}, filter.Keyword, filter.IsPublic)
	where := "s.user_id = $1"
	if len(conds) > 0 {
		where += " AND " + strings.Join(conds, " AND ")
	}
	from := " FROM scraps s JOIN posts p ON p.id = s.post_id WHERE " + where

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+from, args...); err != nil {
		return nil, 0, wrapErr("count scraps", err)
	}

	order, ok := scrapOrder[filter.SortBy]
	if !ok {
		order = scrapOrder[model.PostSortLatest]
	}
	args = append(args, page.PageSize, page.Offset())
	query := fmt.Sprintf(
		"SELECT s.id AS scrap_id, s.user_id AS scrap_user_id, s.created_at AS scrap_created_at, p.*%s ORDER BY %s LIMIT $%d OFFSET $%d",
		from, order, len(args)-1, len(args))

	var rows []scrapRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, wrapErr("list scraps", err)
	}

	scraps := make([]*model.Scrap, 0, len(rows))
	for i := range rows {
		post := rows[i].Post
		scraps = append(scraps, &model.Scrap{
			ID:        rows[i].ScrapID,
			UserID:    rows[i].ScrapUserID,
			PostID:    post.ID,
			CreatedAt: rows[i].ScrapCreatedAt,
			Post:      &post,
		})
	}
	return scraps, total, nil
}

func (r *scrapRepository) GetPost(ctx context.Context, userID, postID int64) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post, `
		SELECT p.* FROM scraps s
		JOIN posts p ON p.id = s.post_id
		WHERE s.user_id = $1 AND s.post_id = $2`, userID, postID)
	if err != nil {
		return nil, wrapErr("get scrapped post", err)
	}
	return &post, nil
}
