package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/internal/middleware"
	"github.com/jwalitptl/memory-api/internal/model"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
)

// IDParam parses a positive integer path parameter
func IDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid "+name, err)
	}
	return id, nil
}

// CurrentUser returns the authenticated user id
func CurrentUser(c *gin.Context) (int64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, apperrors.Unauthorized("authentication required")
	}
	return id, nil
}

// PageQuery reads page and pageSize from the query string
func PageQuery(c *gin.Context) model.Pagination {
	var p model.Pagination
	p.Page, _ = strconv.Atoi(c.Query("page"))
	p.PageSize, _ = strconv.Atoi(c.Query("pageSize"))
	return p.Normalize()
}

// BoolQuery parses an optional boolean query parameter
func BoolQuery(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Validation("invalid "+name, err)
	}
	return &v, nil
}
