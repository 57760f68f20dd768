package models

import "time"

// Notification kinds.
const (
	NotifFollowRequest   = "follow-request"
	NotifFollowAccepted  = "follow-accepted"
	NotifPostLiked       = "post-liked"
	NotifNewComment      = "new-comment"
	NotifMessageReceived = "message-received"
)

// Notification is a transient event pushed to a user's live sessions. It is
// not persisted; a durable notification store is a future extension.
type Notification struct {
	Type      string    `json:"type"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	PostID    string    `json:"postId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	ChatID    string    `json:"chatId,omitempty"`
}
