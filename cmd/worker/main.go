package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/memory-api/internal/config"
	"github.com/jwalitptl/memory-api/internal/repository/postgres"
	"github.com/jwalitptl/memory-api/internal/worker"
	"github.com/jwalitptl/memory-api/pkg/logger"
)

// Config is read from WORKER_* environment variables
type Config struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	RetentionDays int           `envconfig:"RETENTION_DAYS" default:"90"`
	Interval      time.Duration `envconfig:"INTERVAL" default:"1h"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON       bool          `envconfig:"LOG_JSON" default:"false"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("worker", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
		JSON:       cfg.LogJSON,
	}).WithFields(map[string]interface{}{"component": "notification_cleanup"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewDB(ctx, config.DatabaseConfig{URL: cfg.DatabaseURL, MaxOpenConns: 2})
	if err != nil {
		appLog.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(postgres.NewBaseRepository(db, nil))
	cleanup := worker.NewNotificationCleanupWorker(repo, cfg.RetentionDays, cfg.Interval, appLog)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLog.Info("Shutting down...")
		cancel()
	}()

	appLog.Info("Worker started", "retention_days", cfg.RetentionDays, "interval", cfg.Interval.String())
	cleanup.Start(ctx)
}
