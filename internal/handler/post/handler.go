package post

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/internal/handler"
	"github.com/jwalitptl/memory-api/internal/middleware"
	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, userID, groupID int64, req *model.CreatePostRequest) (*model.Post, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context, groupID int64, filter model.PostFilter) ([]*model.Post, int, error)
	Update(ctx context.Context, userID, id int64, req *model.UpdatePostRequest) (*model.Post, error)
	Delete(ctx context.Context, userID, id int64) error
	IsPublic(ctx context.Context, id int64) (bool, error)
	Like(ctx context.Context, id int64) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.POST("/groups/:groupId/posts", auth.Required(), h.Create)
	r.GET("/groups/:groupId/posts", h.List)

	posts := r.Group("/posts")
	{
		posts.GET("/:postId", h.Get)
		posts.PUT("/:postId", auth.Required(), h.Update)
		posts.DELETE("/:postId", auth.Required(), h.Delete)
		posts.GET("/:postId/is-public", h.IsPublic)
		posts.POST("/:postId/like", auth.Required(), h.Like)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	groupID, err := handler.IDParam(c, "groupId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}

	post, err := h.service.Create(c.Request.Context(), userID, groupID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, "post created", post)
}

func (h *Handler) List(c *gin.Context) {
	groupID, err := handler.IDParam(c, "groupId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	isPublic, err := handler.BoolQuery(c, "isPublic")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter := model.PostFilter{
		Pagination: handler.PageQuery(c),
		SortBy:     c.DefaultQuery("sortBy", model.PostSortLatest),
		Keyword:    c.Query("keyword"),
		IsPublic:   isPublic,
	}
	posts, total, err := h.service.List(c.Request.Context(), groupID, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", httputil.NewPage(posts, filter.Page, filter.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.IDParam(c, "postId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	post, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", post)
}

func (h *Handler) Update(c *gin.Context) {
	userID, id, ok := userAndPost(c)
	if !ok {
		return
	}

	var req model.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}

	post, err := h.service.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "post updated", post)
}

func (h *Handler) Delete(c *gin.Context) {
	userID, id, ok := userAndPost(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "post deleted", nil)
}

func (h *Handler) IsPublic(c *gin.Context) {
	id, err := handler.IDParam(c, "postId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	public, err := h.service.IsPublic(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", gin.H{"postId": id, "isPublic": public})
}

func (h *Handler) Like(c *gin.Context) {
	id, err := handler.IDParam(c, "postId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.service.Like(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "post liked", nil)
}

func userAndPost(c *gin.Context) (int64, int64, bool) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, 0, false
	}
	id, err := handler.IDParam(c, "postId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, 0, false
	}
	return userID, id, true
}
