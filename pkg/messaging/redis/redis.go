package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/memory-api/pkg/circuitbreaker"
	"github.com/jwalitptl/memory-api/pkg/messaging"
)

type RedisBroker struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
	prefix string
	logger zerolog.Logger
}

type Config struct {
	URL          string
	Prefix       string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

func NewRedisBroker(ctx context.Context, config Config, logger zerolog.Logger) (*RedisBroker, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}
	if config.RetryBackoff > 0 {
		opts.MinRetryBackoff = config.RetryBackoff
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, config.Prefix, logger), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, prefix string, logger zerolog.Logger) *RedisBroker {
	if prefix == "" {
		prefix = "memory.events"
	}
	b := &RedisBroker{
		client: client,
		prefix: prefix,
		logger: logger,
	}
	b.cb = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:     "redis-broker",
		Interval: 10 * time.Second,
		Timeout:  5 * time.Second,
		OnStateChange: func(name, from, to string) {
			b.logger.Warn().Str("breaker", name).Str("from", from).Str("to", to).Msg("Circuit breaker state changed")
		},
	})
	return b
}

// Channel returns the Redis channel used for eventType
func (b *RedisBroker) Channel(eventType string) string {
	return b.prefix + "." + eventType
}

func (b *RedisBroker) Publish(ctx context.Context, eventType string, payload interface{}) error {
	data, err := json.Marshal(messaging.Message{Type: eventType, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return b.cb.Execute(func() error {
		return b.client.Publish(ctx, b.Channel(eventType), data).Err()
	})
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

var _ messaging.Broker = (*RedisBroker)(nil)
