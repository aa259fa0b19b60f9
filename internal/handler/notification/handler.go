package notification

import (
	"context"
	"io"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/memory-api/internal/handler"
	"github.com/jwalitptl/memory-api/internal/middleware"
	"github.com/jwalitptl/memory-api/internal/model"
	"github.com/jwalitptl/memory-api/internal/service/live"
	"github.com/jwalitptl/memory-api/pkg/httputil"
)

const DefaultHeartbeat = 25 * time.Second

type Service interface {
	List(ctx context.Context, userID int64, page model.Pagination) ([]*model.Notification, int, error)
	Delete(ctx context.Context, userID, notificationID int64) error
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}

// Subscriber opens and closes live channels
type Subscriber interface {
	Subscribe(userID int64) *live.Channel
	Unsubscribe(ch *live.Channel)
}

type Handler struct {
	service   Service
	live      Subscriber
	heartbeat time.Duration
}

func NewHandler(service Service, subscriber Subscriber, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Handler{service: service, live: subscriber, heartbeat: heartbeat}
}

// RegisterStream adds the SSE endpoint. It must sit outside any request timeout.
func (h *Handler) RegisterStream(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/notifications/subscribe", auth.Required(), h.Subscribe)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	notifications := r.Group("/notifications", auth.Required())
	{
		notifications.GET("", h.List)
		notifications.DELETE("/:notificationId", h.Delete)
		notifications.DELETE("", h.DeleteAll)
	}
}

// Subscribe streams the user's live notifications until the client goes away
func (h *Handler) Subscribe(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ch := h.live.Subscribe(userID)
	defer h.live.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(200)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case frame, ok := <-ch.C:
			if !ok {
				return false
			}
			return sse.Encode(w, sse.Event{Data: string(frame)}) == nil
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})
}

func (h *Handler) List(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	page := handler.PageQuery(c)
	items, total, err := h.service.List(c.Request.Context(), userID, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "", httputil.NewPage(items, page.Page, page.PageSize, total))
}

func (h *Handler) Delete(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	id, err := handler.IDParam(c, "notificationId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "notification deleted", nil)
}

func (h *Handler) DeleteAll(c *gin.Context) {
	userID, err := handler.CurrentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	n, err := h.service.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, "notifications deleted", gin.H{"deletedCount": n})
}
