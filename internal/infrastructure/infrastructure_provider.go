package infrastructure

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/config"
	"github.com/janhq/support-chat-api/internal/domain/chat"
	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/domain/llm"
	"github.com/janhq/support-chat-api/internal/infrastructure/database"
	"github.com/janhq/support-chat-api/internal/infrastructure/llmprovider"
	"github.com/janhq/support-chat-api/internal/infrastructure/lock"
	repository "github.com/janhq/support-chat-api/internal/infrastructure/repository/conversation"
)

// ProvideConversationRepository opens the configured store, applies migrations and wraps it
// with the conversation-existence cache. The cleanup closes the database connection.
func ProvideConversationRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (conversation.Repository, func(), error) {
	if cfg.DBDriver == config.DBDriverMemory {
		log.Warn().Msg("using in-memory store, conversations are lost on restart")
		return repository.NewCachedRepository(repository.NewMemoryRepository(), cfg.ConversationCacheSize, log), func() {}, nil
	}

	db, err := database.Connect(database.ConfigFromApp(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(ctx, db, cfg.DBDriver, log); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
	return repository.NewCachedRepository(repository.NewRepository(db), cfg.ConversationCacheSize, log), cleanup, nil
}

// ProvideLocker provides the per-conversation lock for the configured backend.
func ProvideLocker(ctx context.Context, cfg *config.Config, log zerolog.Logger) (chat.Locker, func(), error) {
	if cfg.LockBackend != config.LockBackendRedis {
		return lock.NewMemoryLocker(), func() {}, nil
	}

	locker, err := lock.NewRedisLocker(ctx, cfg.RedisURL, cfg.LockTTL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	cleanup := func() {
		if err := locker.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return locker, cleanup, nil
}

// ProvideCompletionEngine provides the configured completion backend.
func ProvideCompletionEngine(cfg *config.Config) (llm.Engine, error) {
	return llmprovider.NewEngine(cfg)
}

// InfrastructureProvider provides all infrastructure dependencies.
var InfrastructureProvider = wire.NewSet(
	ProvideConversationRepository,
	ProvideLocker,
	ProvideCompletionEngine,
)
