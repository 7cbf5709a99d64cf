package handlers

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/config"
	"github.com/janhq/support-chat-api/internal/domain/chat"
	requestchat "github.com/janhq/support-chat-api/internal/interfaces/httpserver/requests/chat"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/responses"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Chat   *ChatHandler
	Errors *responses.ErrorWriter
}

// NewProvider creates a new handler provider.
func NewProvider(chatHandler *ChatHandler, errors *responses.ErrorWriter) *Provider {
	return &Provider{
		Chat:   chatHandler,
		Errors: errors,
	}
}

// ProvideChatService exposes the pipeline through the handler's interface.
func ProvideChatService(service *chat.Service) ChatService {
	return service
}

// ProvideErrorWriter discloses internal error details only in development.
func ProvideErrorWriter(cfg *config.Config, log zerolog.Logger) *responses.ErrorWriter {
	return responses.NewErrorWriter(log, cfg.IsDevelopment())
}

// HandlerProvider provides all handlers for wire.
var HandlerProvider = wire.NewSet(
	requestchat.NewValidator,
	ProvideChatService,
	ProvideErrorWriter,
	NewChatHandler,
	NewProvider,
)
