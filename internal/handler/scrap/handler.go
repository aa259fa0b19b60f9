package scrap

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/internal/handler"
	"github.com/jwalitptl/memory-api/internal/middleware"
	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

type Service interface {
	Toggle(ctx context.Context, userID, postID int64) (bool, error)
	IsScrapped(ctx context.Context, userID, postID int64) (bool, error)
	List(ctx context.Context, userID int64, filter model.ScrapFilter) ([]*model.Scrap, int, error)
	Detail(ctx context.Context, userID, postID int64) (*model.Post, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.POST("/posts/:postId/scrap", auth.Required(), h.Toggle)

	scraps := r.Group("/scraps", auth.Required())
	{
		scraps.GET("", h.List)
		scraps.GET("/:postId", h.Status)
		scraps.GET("/:postId/detail", h.Detail)
	}
}

func (h *Handler) Toggle(c *gin.Context) {
	userID, postID, ok := userAndPost(c)
	if !ok {
		return
	}
	scrapped, err := h.service.Toggle(c.Request.Context(), userID, postID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", gin.H{"isScrapped": scrapped})
}

func (h *Handler) List(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	isPublic, err := handler.BoolQuery(c, "isPublic")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter := model.ScrapFilter{
		Pagination: handler.PageQuery(c),
		SortBy:     c.DefaultQuery("sortBy", model.PostSortLatest),
		Keyword:    c.Query("keyword"),
		IsPublic:   isPublic,
	}
	items, total, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", httputil.NewPage(items, filter.Page, filter.PageSize, total))
}

func (h *Handler) Status(c *gin.Context) {
	userID, postID, ok := userAndPost(c)
	if !ok {
		return
	}
	scrapped, err := h.service.IsScrapped(c.Request.Context(), userID, postID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", gin.H{"isScrapped": scrapped})
}

func (h *Handler) Detail(c *gin.Context) {
	userID, postID, ok := userAndPost(c)
	if !ok {
		return
	}
	post, err := h.service.Detail(c.Request.Context(), userID, postID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", post)
}

func userAndPost(c *gin.Context) (int64, int64, bool) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, 0, false
	}
	postID, err := handler.IDParam(c, "postId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, 0, false
	}
	return userID, postID, true
}
