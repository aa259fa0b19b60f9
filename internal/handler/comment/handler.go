package comment

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/internal/handler"
	"github.com/jwalitptl/memory-api/internal/middleware"
	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, userID, postID int64, req *model.CreateCommentRequest) (*model.Comment, error)
	List(ctx context.Context, postID int64, page model.Pagination) ([]*model.Comment, int, error)
	Update(ctx context.Context, userID, id int64, content string) (*model.Comment, error)
	Delete(ctx context.Context, userID, id int64) error
	ToggleLike(ctx context.Context, userID, id int64) (*model.CommentLikeResult, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.POST("/posts/:postId/comments", auth.Required(), h.Create)
	r.GET("/posts/:postId/comments", h.List)

	comments := r.Group("/comments", auth.Required())
	{
		comments.PUT("/:commentId", h.Update)
		comments.DELETE("/:commentId", h.Delete)
		comments.POST("/:commentId/like", h.Like)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	postID, err := handler.IDParam(c, "postId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}

	comment, err := h.service.Create(c.Request.Context(), userID, postID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, "comment created", comment)
}

func (h *Handler) List(c *gin.Context) {
	postID, err := handler.IDParam(c, "postId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	page := handler.PageQuery(c)
	comments, total, err := h.service.List(c.Request.Context(), postID, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", httputil.NewPage(comments, page.Page, page.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	userID, id, ok := userAndComment(c)
	if !ok {
		return
	}

	var req model.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}

	comment, err := h.service.Update(c.Request.Context(), userID, id, req.Content)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "comment updated", comment)
}

func (h *Handler) Delete(c *gin.Context) {
	userID, id, ok := userAndComment(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "comment deleted", nil)
}

func (h *Handler) Like(c *gin.Context) {
	userID, id, ok := userAndComment(c)
	if !ok {
		return
	}
	res, err := h.service.ToggleLike(c.Request.Context(), userID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", res)
}

func userAndComment(c *gin.Context) (int64, int64, bool) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, 0, false
	}
	id, err := handler.IDParam(c, "commentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, 0, false
	}
	return userID, id, true
}
