package user

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/internal/handler"
	"github.com/jwalitptl/memory-api/internal/middleware"
	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

type Service interface {
	Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	CheckClientID(ctx context.Context, clientID string) error
	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	users := r.Group("/users")
	{
		users.POST("", h.Create)
		users.GET("/validation", h.CheckClientID)
		users.GET("/me", auth.Required(), h.Me)
		users.PUT("/me", auth.Required(), h.UpdateMe)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, "user created", user)
}

func (h *Handler) CheckClientID(c *gin.Context) {
	if err := h.service.CheckClientID(c.Request.Context(), c.Query("client-id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "client id is available", nil)
}

func (h *Handler) Me(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	user, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", user)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}

	user, err := h.service.Update(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "user updated", user)
}
