package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"mingle/internal/apperrors"
	"mingle/internal/models"
	"mingle/internal/repositories"
)

// MessagePage is one page of chat history, newest first.
type MessagePage struct {
	Messages   []*models.ChatMessage `json:"data"`
	Count      int                   `json:"count"`
	Total      int64                 `json:"total"`
	TotalPages int                   `json:"totalPages"`
	Page       int                   `json:"currentPage"`
}

// ChatService is the store adapter for chats and messages. It owns every
// business rule the protocol engine and the HTTP handlers share: participant
// membership, the mutual-follow gate, content validation, the last-message
// pointer and unread bookkeeping.
type ChatService struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	follows  *FollowService
}

func NewChatService(chats repositories.ChatRepository, messages repositories.MessageRepository, users repositories.UserRepository, follows *FollowService) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		users:    users,
		follows:  follows,
	}
}

// GetOrCreateChat returns the single chat for the requester/other pair,
// creating it on first contact. Only mutual accepted followers may open one.
func (s *ChatService) GetOrCreateChat(ctx context.Context, requesterID, otherID string) (*models.Chat, error) {
	if otherID == "" || otherID == requesterID {
		return nil, apperrors.Validation("Invalid user id")
	}
	other, err := s.users.FindByID(ctx, otherID)
	if err != nil {
		return nil, apperrors.Store("find user", err)
	}
	if other == nil {
		return nil, apperrors.ErrNotFound
	}

	mutual, err := s.follows.IsMutualAcceptedFollow(ctx, requesterID, otherID)
	if err != nil {
		return nil, err
	}
	if !mutual {
		return nil, apperrors.ErrNotMutualFollowers
	}

	chat, err := s.chats.GetOrCreate(ctx, requesterID, otherID)
	if err != nil {
		return nil, apperrors.Store("get or create chat", err)
	}
	return chat, nil
}

// ListChats returns the requester's chats, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]*models.Chat, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("list chats", err)
	}
	return chats, nil
}

// ChatByID resolves a chat or reports ErrNotFound; it never returns nil, nil.
func (s *ChatService) ChatByID(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, apperrors.Store("find chat", err)
	}
	if chat == nil {
		return nil, apperrors.ErrNotFound
	}
	return chat, nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperrors.Validation("Message content is required")
	}
	if len(content) > models.MaxMessageLength {
		return apperrors.Validation(fmt.Sprintf("Message cannot be more than %d characters", models.MaxMessageLength))
	}
	return nil
}

// SendMessage validates, persists and books a new message:
// participant check, live mutual-follow re-check (an unfollow blocks sends on
// an existing chat), create, last-message pointer, unread increment for the
// other participant. Nothing is written unless every check passes.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, content string, attachments []string) (*models.ChatMessage, *models.Chat, error) {
	chat, err := s.ChatByID(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, nil, apperrors.ErrNotAuthorized
	}

	mutual, err := s.follows.IsMutualAcceptedFollow(ctx, senderID, chat.OtherParticipant(senderID))
	if err != nil {
		return nil, nil, err
	}
	if !mutual {
		return nil, nil, apperrors.ErrNotMutualFollowers
	}

	if err := validateContent(content); err != nil {
		return nil, nil, err
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return nil, nil, apperrors.Store("find sender", err)
	}
	if sender == nil {
		return nil, nil, apperrors.ErrNotFound
	}

	msg := &models.ChatMessage{
		ChatID: chatID,
		Sender: models.MessageSender{
			ID:           sender.ID,
			Name:         sender.Name,
			Username:     sender.Username,
			ProfilePhoto: sender.ProfilePhoto,
		},
		Content:     content,
		Attachments: attachments,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, nil, apperrors.Store("create message", err)
	}

	if err := s.chats.SetLastMessage(ctx, chatID, msg); err != nil {
		return nil, nil, apperrors.Store("set last message", err)
	}
	if err := s.chats.IncrementUnread(ctx, chatID, chat.Participants, senderID); err != nil {
		return nil, nil, apperrors.Store("increment unread", err)
	}
	return msg, chat, nil
}

// MarkRead marks every message not sent by userID as read by them and zeroes
// their unread counter. Both steps are idempotent.
func (s *ChatService) MarkRead(ctx context.Context, chatID, userID string) error {
	chat, err := s.ChatByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return apperrors.ErrNotAuthorized
	}

	if _, err := s.messages.MarkRead(ctx, chatID, userID); err != nil {
		return apperrors.Store("mark read", err)
	}
	if err := s.chats.ResetUnread(ctx, chatID, userID); err != nil {
		return apperrors.Store("reset unread", err)
	}
	return nil
}

// GetMessages returns one history page. Reading history marks the chat read
// for the requester, mirroring the realtime mark_read for HTTP-only clients.
func (s *ChatService) GetMessages(ctx context.Context, chatID, userID string, page, limit int) (*MessagePage, error) {
	chat, err := s.ChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, apperrors.ErrNotAuthorized
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	messages, total, err := s.messages.ListByChat(ctx, chatID, page, limit)
	if err != nil {
		return nil, apperrors.Store("list messages", err)
	}

	if err := s.MarkRead(ctx, chatID, userID); err != nil {
		return nil, err
	}

	return &MessagePage{
		Messages:   messages,
		Count:      len(messages),
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		Page:       page,
	}, nil
}
