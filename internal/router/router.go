package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/memory-api/internal/handler/auth"
	"github.com/jwalitptl/memory-api/internal/handler/comment"
	"github.com/jwalitptl/memory-api/internal/handler/group"
	"github.com/jwalitptl/memory-api/internal/handler/health"
	"github.com/jwalitptl/memory-api/internal/handler/notification"
	"github.com/jwalitptl/memory-api/internal/handler/post"
	promhandler "github.com/jwalitptl/memory-api/internal/handler/prometheus"
	"github.com/jwalitptl/memory-api/internal/handler/prompt"
	"github.com/jwalitptl/memory-api/internal/handler/scrap"
	"github.com/jwalitptl/memory-api/internal/handler/user"
	"github.com/jwalitptl/memory-api/internal/middleware"
)

// Handlers are the resource handlers mounted under /api
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Group        *group.Handler
	Post         *post.Handler
	Comment      *comment.Handler
	Scrap        *scrap.Handler
	Notification *notification.Handler
	Prompt       *prompt.Handler
	Health       *health.Handler
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
	Registerer     prometheus.Registerer
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	engine := gin.New()
	metrics := promhandler.New(config.MetricsPrefix, config.Registerer)

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
	}
}

func (r *Router) Setup() {
	r.handlers.Health.RegisterRoutes(r.engine)

	// the live stream stays open far longer than any request timeout
	stream := r.engine.Group("/api")
	r.handlers.Notification.RegisterStream(stream, r.auth)

	api := r.engine.Group("/api", middleware.Timeout(r.config.RequestTimeout))
	// group create and update take image uploads and set their own limit
	r.handlers.Group.RegisterRoutes(api, r.auth)

	limited := api.Group("", middleware.BodyLimit(middleware.DefaultMaxBodySize))
	r.handlers.Auth.RegisterRoutes(limited)
	r.handlers.User.RegisterRoutes(limited, r.auth)
	r.handlers.Post.RegisterRoutes(limited, r.auth)
	r.handlers.Comment.RegisterRoutes(limited, r.auth)
	r.handlers.Scrap.RegisterRoutes(limited, r.auth)
	r.handlers.Notification.RegisterRoutes(limited, r.auth)
	r.handlers.Prompt.RegisterRoutes(limited)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
