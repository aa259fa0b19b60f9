package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
)

type commentRepository struct {
	BaseRepository
}

func NewCommentRepository(base BaseRepository) repository.CommentRepository {
	return &commentRepository{base}
}

const commentColumns = `
	c.id, c.post_id, c.parent_id, c.user_id, c.nickname, c.content, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id) AS like_count
`

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO comments (post_id, parent_id, user_id, nickname, content)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowxContext(ctx, query,
			comment.PostID,
			comment.ParentID,
			comment.UserID,
			comment.Nickname,
			comment.Content,
		).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
		if err != nil {
			return wrapErr("create comment", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1`, comment.PostID)
		if err != nil {
			return wrapErr("count comment", err)
		}
		return mustAffect("count comment", res)
	})
}

func (r *commentRepository) Get(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, `SELECT `+commentColumns+` FROM comments c WHERE c.id = $1`, id)
	if err != nil {
		return nil, wrapErr("get comment", err)
	}
	return &comment, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id int64, content string) (*model.Comment, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2`, content, id)
	if err != nil {
		return nil, wrapErr("update comment", err)
	}
	if err := mustAffect("update comment", res); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *commentRepository) Delete(ctx context.Context, comment *model.Comment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE parent_id = $1)`,
			comment.ID); err != nil {
			return wrapErr("delete reply likes", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE parent_id = $1`, comment.ID)
		if err != nil {
			return wrapErr("delete replies", err)
		}
		replies, err := res.RowsAffected()
		if err != nil {
			return wrapErr("delete replies", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM comment_likes WHERE comment_id = $1`, comment.ID); err != nil {
			return wrapErr("delete comment likes", err)
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, comment.ID)
		if err != nil {
			return wrapErr("delete comment", err)
		}
		if err := mustAffect("delete comment", res); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE posts SET comment_count = GREATEST(comment_count - $1, 0) WHERE id = $2`,
			replies+1, comment.PostID)
		return wrapErr("uncount comment", err)
	})
}

func (r *commentRepository) ListTopLevel(ctx context.Context, postID int64, page model.Pagination) ([]*model.Comment, int, error) {
	page = page.Normalize()

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1 AND parent_id IS NULL`, postID)
	if err != nil {
		return nil, 0, wrapErr("count comments", err)
	}

	comments := []*model.Comment{}
	err = r.db.SelectContext(ctx, &comments, `
		SELECT `+commentColumns+`
		FROM comments c
		WHERE c.post_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`, postID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, wrapErr("list comments", err)
	}
	if len(comments) == 0 {
		return comments, total, nil
	}

	ids := make([]int64, len(comments))
	byID := make(map[int64]*model.Comment, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		byID[c.ID] = c
		c.Replies = []*model.Comment{}
	}

	var replies []*model.Comment
	err = r.db.SelectContext(ctx, &replies, `
		SELECT `+commentColumns+`
		FROM comments c
		WHERE c.parent_id = ANY($1)
		ORDER BY c.created_at ASC, c.id ASC`, pq.Array(ids))
	if err != nil {
		return nil, 0, wrapErr("list replies", err)
	}
	for _, reply := range replies {
		if parent, ok := byID[*reply.ParentID]; ok {
			parent.Replies = append(parent.Replies, reply)
		}
	}
	return comments, total, nil
}

func (r *commentRepository) ToggleLike(ctx context.Context, commentID, userID int64) (*model.CommentLikeResult, error) {
	result := &model.CommentLikeResult{}
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
		if err != nil {
			return wrapErr("unlike comment", err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return wrapErr("unlike comment", err)
		}

		if removed == 0 {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				commentID, userID)
			if err != nil {
				return wrapErr("like comment", err)
			}
			result.Liked = true
		}

		err = tx.GetContext(ctx, &result.LikeCount,
			`SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, commentID)
		return wrapErr("count comment likes", err)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
