package model

import "time"

// MemberRole is a user's role inside one group
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Group sort orders
const (
	GroupSortLatest     = "latest"
	GroupSortMostPosted = "mostPosted"
	GroupSortMostLiked  = "mostLiked"
	GroupSortMostBadge  = "mostBadge"
)

type Group struct {
	ID             int64     `json:"groupId" db:"id"`
	Name           string    `json:"groupName" db:"name"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	IsPublic       bool      `json:"isPublic" db:"is_public"`
	Introduction   string    `json:"introduction" db:"introduction"`
	ImageKey       *string   `json:"-" db:"image_key"`
	ImageURL       *string   `json:"imageUrl" db:"-"`
	GroupLikeCount int       `json:"groupLikeCount" db:"group_like_count"`
	BadgeCount     int       `json:"badgeCount" db:"badge_count"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

type GroupMember struct {
	GroupID  int64      `json:"groupId" db:"group_id"`
	UserID   int64      `json:"userId" db:"user_id"`
	Role     MemberRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joinedAt" db:"joined_at"`
}

// GroupStats are aggregates computed from a group's posts and members
type GroupStats struct {
	GroupID       int64 `db:"group_id"`
	MemberCount   int   `db:"member_count"`
	PostCount     int   `db:"post_count"`
	PostLikeCount int   `db:"post_like_count"`
}

// GroupMetrics are the inputs of badge evaluation
type GroupMetrics struct {
	GroupLikeCount int `db:"group_like_count"`
	PostLikeCount  int `db:"post_like_count"`
	MemberCount    int `db:"member_count"`
	PostCount      int `db:"post_count"`
}

// TotalLikes is the group's own likes plus the likes of all its posts
func (m GroupMetrics) TotalLikes() int {
	return m.GroupLikeCount + m.PostLikeCount
}

// GroupListItem is a group row joined with its aggregates
type GroupListItem struct {
	Group
	PostCount     int `db:"post_count"`
	PostLikeCount int `db:"post_like_count"`
}

type GroupSummary struct {
	GroupID    int64   `json:"groupId"`
	GroupName  string  `json:"groupName"`
	IsPublic   bool    `json:"isPublic"`
	DDay       string  `json:"dday"`
	PostCount  int     `json:"postCount"`
	LikeCount  int     `json:"likeCount"`
	BadgeCount int     `json:"badgeCount"`
	ImageURL   *string `json:"imageUrl"`
}

type GroupDetail struct {
	*Group
	DDay        string `json:"dday"`
	MemberCount int    `json:"memberCount"`
	PostCount   int    `json:"postCount"`
	LikeCount   int    `json:"likeCount"`
}

type GroupFilter struct {
	IsPublic *bool
	Keyword  string
	SortBy   string
}

// Image is an uploaded file attached to a request
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type CreateGroupInput struct {
	Name         string
	Password     string
	IsPublic     bool
	Introduction string
	Image        *Image
}

type UpdateGroupInput struct {
	Name         *string
	Password     *string
	IsPublic     *bool
	Introduction *string
	Image        *Image
}

type CreateGroupForm struct {
	Name         string `form:"name" binding:"required,notblank,min=2,max=36"`
	Password     string `form:"password" binding:"required,min=6,max=16"`
	IsPublic     bool   `form:"isPublic"`
	Introduction string `form:"introduction" binding:"max=500"`
}

type UpdateGroupForm struct {
	Name         *string `form:"name" binding:"omitempty,notblank,min=2,max=36"`
	Password     *string `form:"password" binding:"omitempty,min=6,max=16"`
	IsPublic     *bool   `form:"isPublic"`
	Introduction *string `form:"introduction" binding:"omitempty,max=500"`
}

type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}
