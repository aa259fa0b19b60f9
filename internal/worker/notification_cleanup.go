package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/memory-api/pkg/logger"
)

// Purger removes notifications created before a cutoff
type Purger interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type NotificationCleanupWorker struct {
	repo            Purger
	retentionDays   int
	cleanupInterval time.Duration
	log             *logger.Logger
	now             func() time.Time
}

func NewNotificationCleanupWorker(repo Purger, retentionDays int, cleanupInterval time.Duration, log *logger.Logger) *NotificationCleanupWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationCleanupWorker{
		repo:            repo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		log:             log,
		now:             time.Now,
	}
}

// Start runs a cleanup right away and then once per interval until ctx is done
func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		if _, err := w.Cleanup(ctx); err != nil {
			w.log.Error(err, "Cleanup failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cleanup deletes notifications older than the retention window
func (w *NotificationCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup notifications: %w", err)
	}

	w.log.Info("Cleaned up notifications", "count", rows, "before", cutoff)
	return rows, nil
}
