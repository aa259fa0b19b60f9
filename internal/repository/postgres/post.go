package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/repository"
)

type postRepository struct {
	BaseRepository
}

func NewPostRepository(base BaseRepository) repository.PostRepository {
	return &postRepository{base}
}

var postOrder = map[string]string{
	model.PostSortLatest:        "p.created_at DESC",
	model.PostSortMostCommented: "p.comment_count DESC, p.created_at DESC",
	model.PostSortMostLiked:     "p.like_count DESC, p.created_at DESC",
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (group_id, author_id, nickname, title, content, image_url, tags, location, moment, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, like_count, comment_count, created_at, updated_at
	`
	if post.Tags == nil {
		post.Tags = []string{}
	}
	err := r.db.QueryRowxContext(ctx, query,
		post.GroupID,
		post.AuthorID,
		post.Nickname,
		post.Title,
		post.Content,
		post.ImageURL,
		post.Tags,
		post.Location,
		post.Moment,
		post.IsPublic,
	).Scan(&post.ID, &post.LikeCount, &post.CommentCount, &post.CreatedAt, &post.UpdatedAt)
	return wrapErr("create post", err)
}

func (r *postRepository) Get(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	if err := r.db.GetContext(ctx, &post, `SELECT * FROM posts WHERE id = $1`, id); err != nil {
		return nil, wrapErr("get post", err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, image_url = $3, tags = $4, location = $5, moment = $6,
			is_public = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING like_count, comment_count, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		post.Title,
		post.Content,
		post.ImageURL,
		post.Tags,
		post.Location,
		post.Moment,
		post.IsPublic,
		post.ID,
	).Scan(&post.LikeCount, &post.CommentCount, &post.UpdatedAt)
	return wrapErr("update post", err)
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = $1)`,
			`DELETE FROM comments WHERE post_id = $1`,
			`DELETE FROM scraps WHERE post_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return wrapErr("delete post children", err)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return wrapErr("delete post", err)
		}
		return mustAffect("delete post", res)
	})
}

// postConditions renders the shared keyword and visibility filters
func postConditions(args []interface{}, keyword string, isPublic *bool) ([]string, []interface{}) {
	var conds []string
	if isPublic != nil {
		args = append(args, *isPublic)
		conds = append(conds, fmt.Sprintf("p.is_public = $%d", len(args)))
	}
	if kw := strings.TrimSpace(keyword); kw != "" {
		args = append(args, likePattern(kw), kw)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d OR $%d = ANY(p.tags))", n-1, n-1, n))
	}
	return conds, args
}

func (r *postRepository) List(ctx context.Context, groupID int64, filter model.PostFilter) ([]*model.Post, int, error) {
	page := filter.Pagination.Normalize()
	conds, args := postConditions([]interface{}{groupID}, filter.Keyword, filter.IsPublic)
	where := "p.group_id = $1"
	if len(conds) > 0 {
		where += " AND " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM posts p WHERE "+where, args...); err != nil {
		return nil, 0, wrapErr("count posts", err)
	}

	order, ok := postOrder[filter.SortBy]
	if !ok {
		order = postOrder[model.PostSortLatest]
	}
	args = append(args, page.PageSize, page.Offset())
	query := fmt.Sprintf("SELECT p.* FROM posts p WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		where, order, len(args)-1, len(args))

	posts := []*model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, wrapErr("list posts", err)
	}
	return posts, total, nil
}

func (r *postRepository) IncrementLikes(ctx context.Context, id int64) (int64, error) {
	var groupID int64
	err := r.db.GetContext(ctx, &groupID,
		`UPDATE posts SET like_count = like_count + 1 WHERE id = $1 RETURNING group_id`, id)
	if err != nil {
		return 0, wrapErr("like post", err)
	}
	return groupID, nil
}
