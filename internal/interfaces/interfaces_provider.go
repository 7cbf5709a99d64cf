package interfaces

import (
	"github.com/google/wire"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/routes"
	"github.com/janhq/support-chat-api/internal/interfaces/wsserver"
)

// ProvideStorePinger exposes the repository health check to /readyz.
func ProvideStorePinger(repo conversation.Repository) httpserver.Pinger {
	return repo
}

// ProvideRealtime mounts the websocket server on the HTTP server.
func ProvideRealtime(server *wsserver.Server) httpserver.Realtime {
	return server
}

// InterfacesProvider provides the HTTP and websocket surfaces.
var InterfacesProvider = wire.NewSet(
	handlers.HandlerProvider,
	routes.RouteProvider,
	wsserver.ServerProvider,
	ProvideStorePinger,
	ProvideRealtime,
	httpserver.New,
)
