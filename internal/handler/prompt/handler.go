package prompt

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

type Service interface {
	Suggest(ctx context.Context, topic string) string
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/prompt", h.Suggest)
}

// Suggest returns one writing prompt. The upstream never fails the request.
func (h *Handler) Suggest(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		httputil.RespondWithError(c, apperrors.Validation("주제를 입력해주세요.", nil))
		return
	}
	httputil.RespondWithSuccess(c, "", gin.H{"prompt": h.service.Suggest(c.Request.Context(), topic)})
}
