package model

import "time"

// Scrap is a user's bookmark of a post
type Scrap struct {
	ID        int64     `json:"scrapId" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	PostID    int64     `json:"postId" db:"post_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Post      *Post     `json:"post,omitempty" db:"-"`
}

type ScrapFilter struct {
	Pagination
	SortBy   string
	Keyword  string
	IsPublic *bool
}
