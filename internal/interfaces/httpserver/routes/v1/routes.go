package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/handlers"
)

// Routes holds the chat API route configuration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes creates a new routes instance.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register registers the chat API under /api/chat.
func (r *Routes) Register(engine *gin.Engine) {
	api := engine.Group("/api/chat")
	RegisterChatRoutes(api, r.handlers.Chat, r.handlers.Errors)
}
