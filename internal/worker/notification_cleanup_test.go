package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakePurger) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, before)
	return 3, f.err
}

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestCleanupUsesRetentionWindow(t *testing.T) {
	repo := &fakePurger{}
	w := NewNotificationCleanupWorker(repo, 90, time.Hour, nil)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	n, err := w.Cleanup(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	require.Len(t, repo.cutoffs, 1)
	assert.Equal(t, time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), repo.cutoffs[0])
}

func TestCleanupWrapsRepositoryError(t *testing.T) {
	boom := errors.New("boom")
	w := NewNotificationCleanupWorker(&fakePurger{err: boom}, 30, time.Hour, nil)

	_, err := w.Cleanup(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStartRunsUntilCancelled(t *testing.T) {
	repo := &fakePurger{}
	w := NewNotificationCleanupWorker(repo, 30, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return repo.calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
