package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

type Service interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, httputil.BindError(err))
		return
	}

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "login successful", token)
}
