package wsserver

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/config"
	"github.com/janhq/support-chat-api/internal/domain/chat"
	"github.com/janhq/support-chat-api/internal/domain/room"
	requestchat "github.com/janhq/support-chat-api/internal/interfaces/httpserver/requests/chat"
)

// ProvideServer builds the websocket server from configuration.
func ProvideServer(
	service *chat.Service,
	registry *room.Registry,
	validator *requestchat.Validator,
	cfg *config.Config,
	log zerolog.Logger,
) *Server {
	return New(service, registry, validator, Options{
		SendBuffer:     cfg.WSSendBuffer,
		WriteTimeout:   cfg.WSWriteTimeout,
		MaxFrameBytes:  cfg.WSMaxFrameBytes,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ExposeDetails:  cfg.IsDevelopment(),
	}, log)
}

// ServerProvider provides the websocket server for wire.
var ServerProvider = wire.NewSet(ProvideServer)
