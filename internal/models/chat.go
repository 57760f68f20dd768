package models

import (
	"sort"
	"strings"
	"time"
)

// UnreadCounts maps a participant ID to the number of messages in the chat
// that participant has not yet marked read. Absent keys read as zero.
type UnreadCounts map[string]int

func (u UnreadCounts) Get(userID string) int {
	if u == nil {
		return 0
	}
	return u[userID]
}

// Chat is a two-party conversation. Exactly one Chat exists per unordered
// participant pair; ParticipantsKey is the sorted pair used to enforce that
// with a unique index.
type Chat struct {
	ID              string       `bson:"_id,omitempty" json:"id"`
	Participants    []string     `bson:"participants" json:"participants"`
	ParticipantsKey string       `bson:"participantsKey" json:"-"`
	LastMessage     *ChatMessage `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	UnreadCounts    UnreadCounts `bson:"unreadCount" json:"unreadCount"`
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time    `bson:"updatedAt" json:"updatedAt"`
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID. Empty string
// if userID is not a participant.
func (c *Chat) OtherParticipant(userID string) string {
	if !c.HasParticipant(userID) {
		return ""
	}
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// PairKey builds the canonical key for an unordered participant pair.
func PairKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}
