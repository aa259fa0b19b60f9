package model

import (
	"time"

	"github.com/lib/pq"
)

// Post sort orders
const (
	PostSortLatest        = "latest"
	PostSortMostCommented = "mostCommented"
	PostSortMostLiked     = "mostLiked"
)

// Post is a memory shared inside a group
type Post struct {
	ID           int64          `json:"postId" db:"id"`
	GroupID      int64          `json:"groupId" db:"group_id"`
	AuthorID     int64          `json:"authorId" db:"author_id"`
	Nickname     string         `json:"nickname" db:"nickname"`
	Title        string         `json:"title" db:"title"`
	Content      string         `json:"content" db:"content"`
	ImageURL     *string        `json:"imageUrl" db:"image_url"`
	Tags         pq.StringArray `json:"tag" db:"tags"`
	Location     *string        `json:"location" db:"location"`
	Moment       time.Time      `json:"moment" db:"moment"`
	IsPublic     bool           `json:"isPublic" db:"is_public"`
	LikeCount    int            `json:"likeCount" db:"like_count"`
	CommentCount int            `json:"commentCount" db:"comment_count"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}

type PostFilter struct {
	Pagination
	SortBy   string
	Keyword  string
	IsPublic *bool
}

// Date is a calendar day in YYYY-MM-DD form, also accepting RFC 3339
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return &time.ParseError{Layout: "2006-01-02", Value: s}
}

type CreatePostRequest struct {
	Title    string   `json:"title" binding:"required,notblank,max=100"`
	Content  string   `json:"content" binding:"required,notblank"`
	ImageURL *string  `json:"imageUrl" binding:"omitempty,url"`
	Tags     []string `json:"tag" binding:"omitempty,max=20,dive,max=30"`
	Location *string  `json:"location" binding:"omitempty,max=100"`
	Moment   Date     `json:"moment" binding:"required"`
	IsPublic bool     `json:"isPublic"`
}

type UpdatePostRequest struct {
	Title    *string  `json:"title" binding:"omitempty,notblank,max=100"`
	Content  *string  `json:"content" binding:"omitempty,notblank"`
	ImageURL *string  `json:"imageUrl" binding:"omitempty,url"`
	Tags     []string `json:"tag" binding:"omitempty,max=20,dive,max=30"`
	Location *string  `json:"location" binding:"omitempty,max=100"`
	Moment   *Date    `json:"moment"`
	IsPublic *bool    `json:"isPublic"`
}
