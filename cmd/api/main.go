package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/memory-api/internal/config"
	authHandler "github.com/jwalitptl/memory-api/internal/handler/auth"
	commentHandler "github.com/jwalitptl/memory-api/internal/handler/comment"
	groupHandler "github.com/jwalitptl/memory-api/internal/handler/group"
	"github.com/jwalitptl/memory-api/internal/handler/health"
	notificationHandler "github.com/jwalitptl/memory-api/internal/handler/notification"
	postHandler "github.com/jwalitptl/memory-api/internal/handler/post"
	promptHandler "github.com/jwalitptl/memory-api/internal/handler/prompt"
	scrapHandler "github.com/jwalitptl/memory-api/internal/handler/scrap"
	userHandler "github.com/jwalitptl/memory-api/internal/handler/user"
	"github.com/jwalitptl/memory-api/internal/middleware"
	"github.com/jwalitptl/memory-api/internal/repository/postgres"
	"github.com/jwalitptl/memory-api/internal/router"
	authService "github.com/jwalitptl/memory-api/internal/service/auth"
	badgeService "github.com/jwalitptl/memory-api/internal/service/badge"
	commentService "github.com/jwalitptl/memory-api/internal/service/comment"
	groupService "github.com/jwalitptl/memory-api/internal/service/group"
	"github.com/jwalitptl/memory-api/internal/service/live"
	notificationService "github.com/jwalitptl/memory-api/internal/service/notification"
	postService "github.com/jwalitptl/memory-api/internal/service/post"
	promptService "github.com/jwalitptl/memory-api/internal/service/prompt"
	scrapService "github.com/jwalitptl/memory-api/internal/service/scrap"
	userService "github.com/jwalitptl/memory-api/internal/service/user"
	"github.com/jwalitptl/memory-api/pkg/auth"
	"github.com/jwalitptl/memory-api/pkg/circuitbreaker"
	"github.com/jwalitptl/memory-api/pkg/event"
	"github.com/jwalitptl/memory-api/pkg/logger"
	"github.com/jwalitptl/memory-api/pkg/messaging"
	"github.com/jwalitptl/memory-api/pkg/messaging/redis"
	"github.com/jwalitptl/memory-api/pkg/metrics"
	"github.com/jwalitptl/memory-api/pkg/security"
	"github.com/jwalitptl/memory-api/pkg/storage"
	"github.com/jwalitptl/memory-api/pkg/validator"
)

const metricsNamespace = "memory_api"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	})
	log.Logger = appLog.Zerolog()

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(metricsNamespace, reg)

	ctx := context.Background()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	// Initialize repositories
	base := postgres.NewBaseRepository(db, m)
	userRepo := postgres.NewUserRepository(base)
	groupRepo := postgres.NewGroupRepository(base)
	postRepo := postgres.NewPostRepository(base)
	commentRepo := postgres.NewCommentRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	badgeRepo := postgres.NewBadgeRepository(base)
	scrapRepo := postgres.NewScrapRepository(base)

	store, err := newStorage(cfg.Storage, appLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Event bus, optionally mirrored to Redis
	busOpts := []event.Option{event.WithMetrics(m)}
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(ctx, redis.Config{
			URL:    cfg.Redis.URL,
			Prefix: cfg.Redis.Prefix,
		}, appLog.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		busOpts = append(busOpts, event.WithMirror(broker))
	}
	bus := event.NewBus(appLog, busOpts...)
	registry := live.NewRegistry(cfg.Live.Buffer, appLog, m)

	// Initialize services
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiration)

	badgeSvc := badgeService.NewService(groupRepo, badgeRepo, appLog, m)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	userSvc := userService.NewService(userRepo, hasher)
	groupSvc := groupService.NewService(groupRepo, store, hasher, badgeSvc, appLog)
	postSvc := postService.NewService(postRepo, groupRepo, userRepo, badgeSvc)
	commentSvc := commentService.NewService(commentRepo, postRepo, userRepo, bus)
	scrapSvc := scrapService.NewService(scrapRepo, postRepo)
	notificationSvc := notificationService.NewService(notificationService.Repositories{
		Users:         userRepo,
		Posts:         postRepo,
		Comments:      commentRepo,
		Notifications: notificationRepo,
	}, registry, appLog, m)
	notificationSvc.Register(bus)
	promptSvc := newPromptService(cfg.OpenAI, appLog)

	// Setup router
	r := router.NewRouter(middleware.NewAuthMiddleware(authSvc), router.Handlers{
		Auth:         authHandler.NewHandler(authSvc),
		User:         userHandler.NewHandler(userSvc),
		Group:        groupHandler.NewHandler(groupSvc, badgeSvc),
		Post:         postHandler.NewHandler(postSvc),
		Comment:      commentHandler.NewHandler(commentSvc),
		Scrap:        scrapHandler.NewHandler(scrapSvc),
		Notification: notificationHandler.NewHandler(notificationSvc, registry, cfg.Live.Heartbeat),
		Prompt:       promptHandler.NewHandler(promptSvc),
		Health:       health.NewHandler(db, reg),
	}, router.RouterConfig{
		RateLimit:      rate.Limit(cfg.Server.RateLimitRPS),
		RateBurst:      cfg.Server.RateLimitBurst,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     corsConfig(cfg.Server.AllowedOrigins),
		MetricsPrefix:  metricsNamespace,
		Registerer:     reg,
	})
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	// open streams never finish on their own
	registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	bus.Wait()
	if broker != nil {
		if err := broker.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis broker")
		}
	}

	log.Info().Msg("server exited properly")
}

func newStorage(cfg config.StorageConfig, appLog *logger.Logger) (storage.Storage, error) {
	if cfg.Bucket == "" {
		appLog.Warn("No bucket configured, keeping uploads in memory")
		return storage.NewMemory(cfg.CloudFrontURL), nil
	}

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:    "s3",
		Timeout: 30 * time.Second,
		OnStateChange: func(name, from, to string) {
			appLog.Warn("Circuit breaker state changed", "breaker", name, "from", from, "to", to)
		},
	})
	s3, err := storage.NewS3Storage(storage.S3Config{
		Region:    cfg.Region,
		Bucket:    cfg.Bucket,
		AccessKey: cfg.AccessKeyID,
		SecretKey: cfg.SecretKey,
		BaseURL:   cfg.CloudFrontURL,
	}, cb)
	if err != nil {
		return nil, err
	}
	return s3, nil
}

func newPromptService(cfg config.OpenAIConfig, appLog *logger.Logger) *promptService.Service {
	client := promptService.NewClient(cfg)
	if client == nil {
		appLog.Warn("No OpenAI key configured, serving the fallback prompt")
		return promptService.NewService(nil, cfg, nil, appLog)
	}

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:    "openai",
		Timeout: time.Minute,
		OnStateChange: func(name, from, to string) {
			appLog.Warn("Circuit breaker state changed", "breaker", name, "from", from, "to", to)
		},
	})
	return promptService.NewService(client, cfg, cb, appLog)
}

func corsConfig(origins []string) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	if len(origins) > 0 {
		c.AllowOrigins = origins
	}
	return c
}
