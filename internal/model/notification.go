package model

import "time"

// MessageType tags what produced a message
type MessageType string

const (
	MessageTypeCommentCreated MessageType = "COMMENT_CREATED"
	MessageTypeReplyCreated   MessageType = "REPLY_CREATED"
)

// Message is the immutable content a notification points at
type Message struct {
	ID        int64       `json:"messageId" db:"id"`
	Type      MessageType `json:"type" db:"type"`
	Title     string      `json:"title" db:"title"`
	Content   string      `json:"content" db:"content"`
	PostID    int64       `json:"postId" db:"post_id"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// Notification delivers one message to one recipient
type Notification struct {
	ID        int64     `json:"notificationId" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	MessageID int64     `json:"messageId" db:"message_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Message   *Message  `json:"message,omitempty" db:"-"`
}

// LiveMessage is the frame pushed to a recipient's open channels
type LiveMessage struct {
	MessageID      int64       `json:"messageId"`
	Type           MessageType `json:"type"`
	Title          string      `json:"title"`
	Content        string      `json:"content"`
	PostID         int64       `json:"postId"`
	CreatedAt      time.Time   `json:"createdAt"`
	NotificationID int64       `json:"notificationId"`
	ReceiverName   string      `json:"receiverName"`
}
