package realtime

import (
	"context"
	"errors"
	"log"

	"mingle/internal/apperrors"
	"mingle/internal/metrics"
	"mingle/internal/models"
)

// ChatPort is the slice of the chat service the engine drives. All business
// rules (participant membership, the mutual-follow gate, content validation,
// unread bookkeeping) live behind it; the engine only maps outcomes onto the
// wire protocol.
type ChatPort interface {
	ChatByID(ctx context.Context, chatID string) (*models.Chat, error)
	// SendMessage persists the message and performs the pointer/unread
	// updates. The returned chat carries the participant list for fanout.
	SendMessage(ctx context.Context, chatID, senderID, content string, attachments []string) (*models.ChatMessage, *models.Chat, error)
	MarkRead(ctx context.Context, chatID, userID string) error
}

// FollowPort resolves who should hear a user's presence changes.
type FollowPort interface {
	MutualFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// PresencePort flips the user's presence flags on connect/disconnect.
type PresencePort interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
}

// Engine runs the per-connection protocol state machine. A connection arrives
// here already authenticated (Run is only reachable with verified claims);
// Run registers the session, serves events until the connection drops, then
// tears everything down.
type Engine struct {
	registry *Registry
	chats    ChatPort
	follows  FollowPort
	presence PresencePort
	typing   *TypingTracker
	notifier *Notifier
}

func NewEngine(registry *Registry, chats ChatPort, follows FollowPort, presence PresencePort, typing *TypingTracker, notifier *Notifier) *Engine {
	return &Engine{
		registry: registry,
		chats:    chats,
		follows:  follows,
		presence: presence,
		typing:   typing,
		notifier: notifier,
	}
}

// Run blocks until the session's connection closes.
func (e *Engine) Run(ctx context.Context, s *Session) {
	e.registry.Register(s)
	if err := e.presence.SetOnline(ctx, s.UserID); err != nil {
		log.Printf("realtime: set online user=%s: %v", s.UserID, err)
	}
	log.Printf("realtime: connected user=%s session=%s", s.Username, s.ID)

	defer e.disconnect(ctx, s)

	for {
		data, err := s.Read()
		if err != nil {
			return
		}
		if len(data) == 0 {
			continue
		}
		e.dispatch(ctx, s, data)
	}
}

func (e *Engine) dispatch(ctx context.Context, s *Session, data []byte) {
	eventType, msg, err := ParseClientEvent(data)
	if err != nil {
		metrics.EventsTotal.WithLabelValues("invalid").Inc()
		e.sendError(s, "Invalid event")
		return
	}
	metrics.EventsTotal.WithLabelValues(eventType).Inc()

	switch ev := msg.(type) {
	case *SendMessageEvent:
		e.handleSendMessage(ctx, s, ev)
	case *TypingEvent:
		e.handleTyping(ctx, s, ev.ChatID, ev.Type == EventTyping)
	case *MarkReadEvent:
		e.handleMarkRead(ctx, s, ev)
	}
}

func (e *Engine) handleSendMessage(ctx context.Context, s *Session, ev *SendMessageEvent) {
	msg, chat, err := e.chats.SendMessage(ctx, ev.ChatID, s.UserID, ev.Content, ev.Attachments)
	if err != nil {
		metrics.EventErrorsTotal.WithLabelValues(EventSendMessage).Inc()
		e.sendError(s, sendMessageErrorText(err))
		if apperrors.IsStore(err) {
			log.Printf("realtime: send_message user=%s chat=%s: %v", s.UserID, ev.ChatID, err)
		}
		return
	}

	// Broadcast only after the store write committed. Every participant's
	// sessions get it, including the sender's other devices.
	event := NewMessageEvent{Type: EventNewMessage, ChatID: chat.ID, Message: msg}
	for _, pid := range chat.Participants {
		e.registry.BroadcastTo(pid, event)
	}

	if receiver := chat.OtherParticipant(s.UserID); receiver != "" {
		e.notifier.MessageReceived(chat.ID, s.UserID, receiver)
	}
}

// handleTyping relays the indicator to the other participant's sessions only.
// It is best-effort: an unknown chat or non-participant is silently dropped.
func (e *Engine) handleTyping(ctx context.Context, s *Session, chatID string, typing bool) {
	chat, err := e.chats.ChatByID(ctx, chatID)
	if err != nil || !chat.HasParticipant(s.UserID) {
		return
	}

	other := chat.OtherParticipant(s.UserID)
	if typing {
		e.typing.Touch(chatID, s.UserID)
		e.registry.BroadcastTo(other, UserTypingEvent{
			Type:     EventUserTyping,
			ChatID:   chatID,
			UserID:   s.UserID,
			Username: s.Username,
		})
	} else {
		e.typing.Clear(chatID, s.UserID)
		e.registry.BroadcastTo(other, UserStopTypingEvent{
			Type:   EventUserStopTyping,
			ChatID: chatID,
			UserID: s.UserID,
		})
	}
}

func (e *Engine) handleMarkRead(ctx context.Context, s *Session, ev *MarkReadEvent) {
	if err := e.chats.MarkRead(ctx, ev.ChatID, s.UserID); err != nil {
		metrics.EventErrorsTotal.WithLabelValues(EventMarkRead).Inc()
		e.sendError(s, markReadErrorText(err))
		if apperrors.IsStore(err) {
			log.Printf("realtime: mark_read user=%s chat=%s: %v", s.UserID, ev.ChatID, err)
		}
		return
	}

	chat, err := e.chats.ChatByID(ctx, ev.ChatID)
	if err != nil {
		return
	}
	e.registry.BroadcastTo(chat.OtherParticipant(s.UserID), MessagesReadEvent{
		Type:   EventMessagesRead,
		ChatID: ev.ChatID,
		UserID: s.UserID,
	})
}

// ExpireTyping is the typing tracker's sweep callback: a stale indicator is
// retracted toward the other participant as if stop_typing had arrived.
func (e *Engine) ExpireTyping(chatID, userID string) {
	chat, err := e.chats.ChatByID(context.Background(), chatID)
	if err != nil {
		return
	}
	e.registry.BroadcastTo(chat.OtherParticipant(userID), UserStopTypingEvent{
		Type:   EventUserStopTyping,
		ChatID: chatID,
		UserID: userID,
	})
}

func (e *Engine) disconnect(ctx context.Context, s *Session) {
	for _, chatID := range e.typing.ClearUser(s.UserID) {
		e.ExpireTyping(chatID, s.UserID)
	}

	last := e.registry.Unregister(s)
	log.Printf("realtime: disconnected user=%s session=%s", s.Username, s.ID)
	if !last {
		return
	}

	if err := e.presence.SetOffline(ctx, s.UserID); err != nil {
		log.Printf("realtime: set offline user=%s: %v", s.UserID, err)
	}

	// Offline fanout goes to mutual followers, not globally.
	ids, err := e.follows.MutualFollowerIDs(ctx, s.UserID)
	if err != nil {
		log.Printf("realtime: mutual followers for user=%s: %v", s.UserID, err)
		return
	}
	event := UserOfflineEvent{Type: EventUserOffline, UserID: s.UserID}
	for _, id := range ids {
		e.registry.BroadcastTo(id, event)
	}
}

func (e *Engine) sendError(s *Session, text string) {
	_ = s.Send(ErrorEvent{Type: EventError, Error: text})
}

// Error texts are part of the wire protocol; clients match on them.

func sendMessageErrorText(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "Chat not found"
	case errors.Is(err, apperrors.ErrNotMutualFollowers):
		return "You can only chat with mutual followers"
	case errors.Is(err, apperrors.ErrNotAuthorized):
		return "Not authorized to send messages in this chat"
	case errors.Is(err, apperrors.ErrValidation):
		return err.Error()
	default:
		return "Error sending message"
	}
}

func markReadErrorText(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "Chat not found"
	case errors.Is(err, apperrors.ErrNotAuthorized):
		return "Not authorized to access this chat"
	default:
		return "Error marking messages as read"
	}
}
