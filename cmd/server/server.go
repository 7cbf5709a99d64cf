// @title           Support Chat API
// @version         1.0
// @description     Customer-support chat service.
// @description     Stores conversations, generates assistant replies and fans messages out to realtime rooms at /ws.

// @contact.name   Jan Team
// @contact.url    https://github.com/janhq/jan-server

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/config"
	"github.com/janhq/support-chat-api/internal/domain"
	"github.com/janhq/support-chat-api/internal/infrastructure"
	"github.com/janhq/support-chat-api/internal/infrastructure/logger"
	"github.com/janhq/support-chat-api/internal/infrastructure/observability"
	"github.com/janhq/support-chat-api/internal/interfaces"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/handlers"
	requestchat "github.com/janhq/support-chat-api/internal/interfaces/httpserver/requests/chat"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/routes"
	"github.com/janhq/support-chat-api/internal/interfaces/wsserver"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

// Start runs the application until ctx is cancelled.
func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	app, cleanup, err := buildApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}
	defer cleanup()

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("db_driver", cfg.DBDriver).
		Str("completion_provider", cfg.CompletionProvider).
		Str("lock_backend", cfg.LockBackend).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

// buildApplication wires the application by hand. It mirrors CreateApplication in wire.go.
func buildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	repo, closeRepo, err := infrastructure.ProvideConversationRepository(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	locker, closeLocker, err := infrastructure.ProvideLocker(ctx, cfg, log)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}
	cleanup := func() {
		closeLocker()
		closeRepo()
	}

	engine, err := infrastructure.ProvideCompletionEngine(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	registry := domain.ProvideRegistry(log)
	chatService := domain.ProvideChatService(
		repo,
		domain.ProvideHistoryAssembler(repo, cfg),
		domain.ProvideCompletionClient(engine, cfg, log),
		locker,
		registry,
		cfg,
		log,
	)

	validator := requestchat.NewValidator()
	handlerProvider := handlers.NewProvider(
		handlers.NewChatHandler(handlers.ProvideChatService(chatService), validator),
		handlers.ProvideErrorWriter(cfg, log),
	)
	realtime := wsserver.ProvideServer(chatService, registry, validator, cfg, log)

	httpServer := httpserver.New(
		cfg,
		log,
		routes.NewProvider(handlerProvider),
		interfaces.ProvideStorePinger(repo),
		interfaces.ProvideRealtime(realtime),
	)

	return NewApplication(httpServer, log), cleanup, nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
