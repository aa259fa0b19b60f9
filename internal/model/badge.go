package model

import "time"

// BadgeCategory groups tiers measured on the same metric
type BadgeCategory string

const (
	BadgeCategoryLike   BadgeCategory = "LIKE"
	BadgeCategoryMember BadgeCategory = "MEMBER"
	BadgeCategoryMemory BadgeCategory = "MEMORY"
)

// Badge is an achievement earned by a group. BadgeType is the tier code, e.g. LIKE_20.
type Badge struct {
	ID        int64     `json:"badgeId" db:"id"`
	GroupID   int64     `json:"groupId" db:"group_id"`
	BadgeType string    `json:"badgeType" db:"badge_type"`
	BadgeName string    `json:"badgeName" db:"badge_name"`
	ImageURL  *string   `json:"badgeImageUrl" db:"badge_image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CreateBadgeRequest is a badge a group admin grants by hand
type CreateBadgeRequest struct {
	BadgeType string  `json:"badgeType" binding:"required,notblank,max=20"`
	BadgeName string  `json:"badgeName" binding:"required,notblank,max=50"`
	ImageURL  *string `json:"badgeImageUrl" binding:"omitempty,url,max=2048"`
}
