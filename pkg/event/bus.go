package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jwalitptl/memory-api/pkg/logger"
	"github.com/jwalitptl/memory-api/pkg/messaging"
	"github.com/jwalitptl/memory-api/pkg/metrics"
)

// Bus is an in-process publish/subscribe dispatcher. Handlers run on their
// own goroutines and their failures stay inside the bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Name][]Handler

	wg      sync.WaitGroup
	log     *logger.Logger
	metrics *metrics.Metrics
	mirror  messaging.Publisher
	now     func() time.Time
}

// Option configures a Bus
type Option func(*Bus)

// WithMirror publishes every emitted event to p as well
func WithMirror(p messaging.Publisher) Option {
	return func(b *Bus) { b.mirror = p }
}

// WithMetrics counts handler failures in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// NewBus creates an empty bus
func NewBus(log *logger.Logger, opts ...Option) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	b := &Bus{
		handlers: make(map[Name][]Handler),
		log:      log,
		metrics:  metrics.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers h for name. Several handlers per name are allowed.
func (b *Bus) On(name Name, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Emit starts every handler registered for name and returns immediately.
// Handlers get a context that keeps ctx's values but not its cancellation,
// since the request that emitted the event may finish first.
func (b *Bus) Emit(ctx context.Context, name Name, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[name]))
	copy(handlers, b.handlers[name])
	b.mu.RUnlock()

	evt := Event{Name: name, Payload: payload, OccurredAt: b.now()}
	detached := context.WithoutCancel(ctx)

	for i, h := range handlers {
		b.wg.Add(1)
		go b.dispatch(detached, evt, i, h)
	}

	if b.mirror != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := b.mirror.Publish(detached, string(name), evt); err != nil {
				b.log.Error(err, "Failed to mirror event", "event", string(name))
			}
		}()
	}
}

// Wait blocks until all handlers started so far have returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) dispatch(ctx context.Context, evt Event, idx int, h Handler) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.fail(evt, idx, fmt.Errorf("handler panic: %v", r))
		}
	}()

	if err := h(ctx, evt); err != nil {
		b.fail(evt, idx, err)
	}
}

func (b *Bus) fail(evt Event, idx int, err error) {
	b.metrics.EventHandlerFailures.WithLabelValues(string(evt.Name)).Inc()
	b.log.Error(err, "Event handler failed", "event", string(evt.Name), "handler", idx)
}
