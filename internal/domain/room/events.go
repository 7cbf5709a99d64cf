package room

import (
	"time"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
)

// Outbound event names.
const (
	EventNewMessage = "new_message"
	EventTyping     = "typing"
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
	EventJoined     = "joined"
	EventLeft       = "left"
	EventError      = "error"
)

// TimestampLayout is ISO-8601 with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MessagePayload is the wire form of a persisted message.
type MessagePayload struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	SenderType     string `json:"senderType"`
	CreatedAt      string `json:"createdAt"`
}

// NewMessagePayload converts a domain message for broadcast.
func NewMessagePayload(msg *conversation.Message) MessagePayload {
	return MessagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		SenderType:     string(msg.SenderType),
		CreatedAt:      FormatTimestamp(msg.CreatedAt),
	}
}

// TypingPayload signals the assistant (no UserID) or another member (UserID set) typing.
type TypingPayload struct {
	IsTyping bool   `json:"isTyping"`
	UserID   string `json:"userId,omitempty"`
}

// PresencePayload announces a member joining or leaving a room.
type PresencePayload struct {
	UserID string `json:"userId"`
}

// MembershipPayload acknowledges a join or leave to the requesting connection.
type MembershipPayload struct {
	ConversationID string `json:"conversationId"`
}

// ErrorPayload is delivered only to the connection whose request failed.
type ErrorPayload struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}
