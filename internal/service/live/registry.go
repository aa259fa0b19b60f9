package live

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jwalitptl/memory-api/pkg/logger"
	"github.com/jwalitptl/memory-api/pkg/metrics"
)

const DefaultBuffer = 16

// Channel is one open stream of a user. Frames arrive on C until the channel
// is unsubscribed, at which point C is closed.
type Channel struct {
	ID     uint64
	UserID int64
	C      <-chan []byte

	queue chan []byte
}

// Registry maps users to their open channels
type Registry struct {
	mu       sync.RWMutex
	channels map[int64]map[uint64]*Channel
	total    int
	closed   bool

	nextID  atomic.Uint64
	buffer  int
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewRegistry creates an empty registry. buffer is the per-channel queue size.
func NewRegistry(buffer int, log *logger.Logger, m *metrics.Metrics) *Registry {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Registry{
		channels: make(map[int64]map[uint64]*Channel),
		buffer:   buffer,
		log:      log,
		metrics:  m,
	}
}

// Subscribe opens a new channel for userID. After Close the returned
// channel is already closed.
func (r *Registry) Subscribe(userID int64) *Channel {
	queue := make(chan []byte, r.buffer)
	ch := &Channel{
		ID:     r.nextID.Add(1),
		UserID: userID,
		C:      queue,
		queue:  queue,
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(queue)
		return ch
	}
	set, ok := r.channels[userID]
	if !ok {
		set = make(map[uint64]*Channel)
		r.channels[userID] = set
	}
	set[ch.ID] = ch
	r.total++
	r.metrics.LiveChannels.Set(float64(r.total))
	r.mu.Unlock()

	r.log.Debug("Live channel opened", "user_id", userID, "channel_id", ch.ID)
	return ch
}

// Unsubscribe removes ch and closes its queue. Calling it again is a no-op.
func (r *Registry) Unsubscribe(ch *Channel) {
	if ch == nil {
		return
	}

	r.mu.Lock()
	set, ok := r.channels[ch.UserID]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, ok := set[ch.ID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(set, ch.ID)
	if len(set) == 0 {
		delete(r.channels, ch.UserID)
	}
	close(ch.queue)
	r.total--
	r.metrics.LiveChannels.Set(float64(r.total))
	r.mu.Unlock()

	r.log.Debug("Live channel closed", "user_id", ch.UserID, "channel_id", ch.ID)
}

// SendToUser serializes data once and queues it on every open channel of
// userID. A user without channels is not an error. Frames for a full queue
// are dropped.
func (r *Registry) SendToUser(userID int64, data any) (int, error) {
	frame, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to encode live message: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.channels[userID]
	if len(set) == 0 {
		r.log.Debug("No live channels for user", "user_id", userID)
		return 0, nil
	}

	delivered := 0
	for _, ch := range set {
		select {
		case ch.queue <- frame:
			delivered++
			r.metrics.LiveMessagesSent.Inc()
		default:
			r.metrics.LiveMessagesDropped.Inc()
			r.log.Warn("Live channel full, frame dropped", "user_id", userID, "channel_id", ch.ID)
		}
	}
	return delivered, nil
}

// Count returns the number of open channels of userID
func (r *Registry) Count(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[userID])
}

// Users returns the number of users with at least one open channel
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Total returns the number of open channels
func (r *Registry) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Close unsubscribes every channel and refuses new ones
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for userID, set := range r.channels {
		for _, ch := range set {
			close(ch.queue)
		}
		delete(r.channels, userID)
	}
	r.total = 0
	r.metrics.LiveChannels.Set(0)
}
