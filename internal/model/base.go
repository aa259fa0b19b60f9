package model

import (
	"fmt"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"pageSize"`
}

// Normalize clamps page and page size to usable values
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// DDay renders the "D+n" age label of something created at createdAt
func DDay(createdAt, now time.Time) string {
	days := int(now.Sub(createdAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return fmt.Sprintf("D+%d", days)
}
