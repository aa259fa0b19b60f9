package model

import "time"

type Comment struct {
	ID        int64      `json:"commentId" db:"id"`
	PostID    int64      `json:"postId" db:"post_id"`
	ParentID  *int64     `json:"parentId" db:"parent_id"`
	UserID    int64      `json:"userId" db:"user_id"`
	Nickname  string     `json:"nickname" db:"nickname"`
	Content   string     `json:"content" db:"content"`
	LikeCount int        `json:"likeCount" db:"like_count"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	Replies   []*Comment `json:"replies,omitempty" db:"-"`
}

// IsReply reports whether c answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,notblank,max=1000"`
	ParentID *int64 `json:"parentId" binding:"omitempty,gt=0"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=1000"`
}

type CommentLikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
