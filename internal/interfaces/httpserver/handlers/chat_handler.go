package handlers

import (
	"context"

	"github.com/janhq/support-chat-api/internal/domain/chat"
	"github.com/janhq/support-chat-api/internal/domain/conversation"
	requestchat "github.com/janhq/support-chat-api/internal/interfaces/httpserver/requests/chat"
)

// ChatService is the slice of the ingestion pipeline the HTTP surface needs.
type ChatService interface {
	Submit(ctx context.Context, in chat.SubmitInput) (*chat.SubmitResult, error)
	GetConversation(ctx context.Context, id string) (*conversation.Conversation, error)
}

// ChatHandler adapts chat requests onto the ingestion pipeline.
type ChatHandler struct {
	service   ChatService
	validator *requestchat.Validator
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service ChatService, validator *requestchat.Validator) *ChatHandler {
	return &ChatHandler{service: service, validator: validator}
}

// SendMessage stores the user's message and the assistant reply.
func (h *ChatHandler) SendMessage(ctx context.Context, req *requestchat.SendMessageRequest) (*chat.SubmitResult, error) {
	if err := h.validator.ValidateSendMessage(ctx, req); err != nil {
		return nil, err
	}
	return h.service.Submit(ctx, chat.SubmitInput{
		Content:        req.Content,
		ConversationID: req.ConversationID,
		Transport:      chat.TransportHTTP,
	})
}

// GetConversation returns a conversation with its full message history.
func (h *ChatHandler) GetConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	return h.service.GetConversation(ctx, id)
}
