// Package realtime implements the authenticated WebSocket core: the session
// registry, the per-connection protocol engine, typing indicators and the
// notification dispatcher. All frames are JSON with a "type" discriminator.
package realtime

import (
	"encoding/json"
	"fmt"

	"mingle/internal/models"
)

// Client -> server event types.
const (
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"
	EventMarkRead    = "mark_read"
)

// Server -> client event types.
const (
	EventNewMessage     = "new_message"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventMessagesRead   = "messages_read"
	EventError          = "error"
	EventNotification   = "notification"
	EventUserOffline    = "user_offline"
)

// Envelope captures the type discriminator and keeps the raw bytes for
// deferred decoding into the concrete event struct.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	e.Raw = make(json.RawMessage, len(data))
	copy(e.Raw, data)

	var partial struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("realtime: unmarshal envelope: %w", err)
	}
	if partial.Type == "" {
		return fmt.Errorf("realtime: missing or empty \"type\" field")
	}
	e.Type = partial.Type
	return nil
}

// Client -> server events.

type SendMessageEvent struct {
	Type        string   `json:"type"`
	ChatID      string   `json:"chatId"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
}

type TypingEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
}

type MarkReadEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
}

// Server -> client events.

type NewMessageEvent struct {
	Type    string              `json:"type"`
	ChatID  string              `json:"chatId"`
	Message *models.ChatMessage `json:"message"`
}

type UserTypingEvent struct {
	Type     string `json:"type"`
	ChatID   string `json:"chatId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type UserStopTypingEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type MessagesReadEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type NotificationEvent struct {
	Type         string              `json:"type"`
	Notification models.Notification `json:"notification"`
}

type UserOfflineEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// ParseClientEvent decodes raw frame bytes into a typed client event. Unknown
// or server-only types are an error.
func ParseClientEvent(data []byte) (string, interface{}, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, err
	}

	var msg interface{}
	switch env.Type {
	case EventSendMessage:
		msg = &SendMessageEvent{}
	case EventTyping, EventStopTyping:
		msg = &TypingEvent{}
	case EventMarkRead:
		msg = &MarkReadEvent{}
	default:
		return env.Type, nil, fmt.Errorf("realtime: unknown event type %q", env.Type)
	}

	if err := json.Unmarshal(env.Raw, msg); err != nil {
		return env.Type, nil, fmt.Errorf("realtime: decode %s: %w", env.Type, err)
	}
	return env.Type, msg, nil
}
