package messaging

import (
	"context"
)

// Publisher pushes a payload to an out-of-process channel
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Broker is a Publisher that owns a connection
type Broker interface {
	Publisher
	Close() error
}

// Message is the wire envelope written by brokers
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
