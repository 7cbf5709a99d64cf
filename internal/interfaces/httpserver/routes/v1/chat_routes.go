package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/handlers"
	requestchat "github.com/janhq/support-chat-api/internal/interfaces/httpserver/requests/chat"
	"github.com/janhq/support-chat-api/internal/interfaces/httpserver/responses"
	chatres "github.com/janhq/support-chat-api/internal/interfaces/httpserver/responses/chat"
	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

const (
	sendMessageFailed     = "Failed to process your message. Please try again."
	getConversationFailed = "Failed to fetch conversation"
)

// RegisterChatRoutes registers the chat message and conversation routes.
func RegisterChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler, errs *responses.ErrorWriter) {
	router.POST("/message", sendMessage(handler, errs))
	router.GET("/conversation/:id", getConversation(handler, errs))
}

// sendMessage godoc
// @Summary      Send a message
// @Description  Stores the visitor's message, generates the assistant reply and returns both. Omitting conversationId starts a new conversation; an unknown one is created with that id.
// @Tags         Chat API
// @Accept       json
// @Produce      json
// @Param        request body requestchat.SendMessageRequest true "Message"
// @Success      201 {object} chatres.SendMessageResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Router       /api/chat/message [post]
func sendMessage(handler *handlers.ChatHandler, errs *responses.ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requestchat.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errs.HandleError(c, platformerrors.NewValidationError(c.Request.Context(), "", "Invalid request body"), sendMessageFailed)
			return
		}

		result, err := handler.SendMessage(c.Request.Context(), &req)
		if err != nil {
			errs.HandleError(c, err, sendMessageFailed)
			return
		}

		c.JSON(http.StatusCreated, chatres.NewSendMessageResponse(result.ConversationID, result.Messages()))
	}
}

// getConversation godoc
// @Summary      Get a conversation
// @Description  Returns a conversation with all of its messages, oldest first.
// @Tags         Chat API
// @Produce      json
// @Param        id path string true "Conversation ID (UUID)"
// @Success      200 {object} chatres.ConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Router       /api/chat/conversation/{id} [get]
func getConversation(handler *handlers.ChatHandler, errs *responses.ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, err := handler.GetConversation(c.Request.Context(), c.Param("id"))
		if err != nil {
			errs.HandleError(c, err, getConversationFailed)
			return
		}

		c.JSON(http.StatusOK, chatres.NewConversationResponse(conv))
	}
}
