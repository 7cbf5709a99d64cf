package domain

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/config"
	"github.com/janhq/support-chat-api/internal/domain/chat"
	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/domain/llm"
	"github.com/janhq/support-chat-api/internal/domain/room"
)

// ProvideRegistry provides the process-wide room registry.
func ProvideRegistry(log zerolog.Logger) *room.Registry {
	return room.NewRegistry(log)
}

// ProvideHistoryAssembler provides the context assembler.
func ProvideHistoryAssembler(repo conversation.Repository, cfg *config.Config) *llm.HistoryAssembler {
	return llm.NewHistoryAssembler(repo, cfg.HistoryLimit)
}

// ProvideCompletionClient provides the completion client with configured model parameters.
func ProvideCompletionClient(engine llm.Engine, cfg *config.Config, log zerolog.Logger) *llm.CompletionClient {
	return llm.NewCompletionClient(
		engine,
		llm.Params{
			Model:       cfg.CompletionModel,
			Temperature: cfg.CompletionTemperature,
			MaxTokens:   cfg.CompletionMaxTokens,
			TopP:        cfg.CompletionTopP,
		},
		cfg.CompletionTimeout,
		cfg.CompletionProvider,
		log,
	)
}

// ProvideChatService provides the message ingestion pipeline.
func ProvideChatService(
	repo conversation.Repository,
	history *llm.HistoryAssembler,
	completion *llm.CompletionClient,
	locker chat.Locker,
	registry *room.Registry,
	cfg *config.Config,
	log zerolog.Logger,
) *chat.Service {
	return chat.NewService(
		repo,
		history,
		completion,
		locker,
		registry,
		chat.Options{
			HistoryLimit: cfg.HistoryLimit,
			TypingDelay:  cfg.TypingDelay,
		},
		log,
	)
}

// ServiceProvider provides all domain services.
var ServiceProvider = wire.NewSet(
	ProvideRegistry,
	ProvideHistoryAssembler,
	ProvideCompletionClient,
	ProvideChatService,
)
