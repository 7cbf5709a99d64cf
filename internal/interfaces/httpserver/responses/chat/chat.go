// Package chat contains response DTOs for the chat endpoints.
package chat

import (
	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/domain/room"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/responses"
)

// MessageResponse is the wire form of a message; identical to the realtime new_message payload.
type MessageResponse = room.MessagePayload

// SendMessageResponse is returned by POST /api/chat/message.
type SendMessageResponse struct {
	Status         string            `json:"status" example:"success"`
	ConversationID string            `json:"conversationId"`
	Messages       []MessageResponse `json:"messages"`
}

// ConversationData is a conversation with its messages oldest-first.
type ConversationData struct {
	ID        string            `json:"id"`
	CreatedAt string            `json:"createdAt"`
	Messages  []MessageResponse `json:"messages"`
}

// ConversationResponse is returned by GET /api/chat/conversation/{id}.
type ConversationResponse struct {
	Status string           `json:"status" example:"success"`
	Data   ConversationData `json:"data"`
}

// NewSendMessageResponse builds the 201 body.
func NewSendMessageResponse(conversationID string, messages []*conversation.Message) SendMessageResponse {
	return SendMessageResponse{
		Status:         responses.StatusSuccess,
		ConversationID: conversationID,
		Messages:       toMessages(messages),
	}
}

// NewConversationResponse builds the 200 body.
func NewConversationResponse(conv *conversation.Conversation) ConversationResponse {
	return ConversationResponse{
		Status: responses.StatusSuccess,
		Data: ConversationData{
			ID:        conv.ID,
			CreatedAt: room.FormatTimestamp(conv.CreatedAt),
			Messages:  toMessages(conv.Messages),
		},
	}
}

func toMessages(messages []*conversation.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, room.NewMessagePayload(msg))
	}
	return out
}
