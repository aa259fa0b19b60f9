package event

import (
	"context"
	"time"
)

// Name identifies an event kind
type Name string

const (
	CommentCreated Name = "comment_created"
	ReplyCreated   Name = "reply_created"
)

// Event is a transient envelope that only exists while it is dispatched
type Event struct {
	Name       Name      `json:"name"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Handler consumes one event. Returned errors are logged by the bus and never
// reach the emitter.
type Handler func(ctx context.Context, evt Event) error

// CommentPayload is carried by CommentCreated and ReplyCreated.
// ParentID is nil for top-level comments.
type CommentPayload struct {
	PostID      int64  `json:"postId"`
	ParentID    *int64 `json:"parentId,omitempty"`
	CommenterID int64  `json:"commenterId"`
	Content     string `json:"content"`
}
