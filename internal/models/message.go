package models

import "time"

// MaxMessageLength bounds chat message content.
const MaxMessageLength = 1000

// MessageSender is the denormalized sender info stored with each message so
// history reads need no extra user lookup.
type MessageSender struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Username     string `bson:"username" json:"username"`
	ProfilePhoto string `bson:"profilePhoto,omitempty" json:"profilePhoto,omitempty"`
}

// ChatMessage is immutable once created except for ReadBy, which only grows.
type ChatMessage struct {
	ID          string        `bson:"_id,omitempty" json:"id"`
	ChatID      string        `bson:"chat" json:"chat"`
	Sender      MessageSender `bson:"sender" json:"sender"`
	Content     string        `bson:"content" json:"content"`
	Attachments []string      `bson:"attachments" json:"attachments"`
	ReadBy      []string      `bson:"readBy" json:"readBy"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
}

// ReadByUser reports whether userID is already in the ReadBy set.
func (m *ChatMessage) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
