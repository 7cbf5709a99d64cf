// Package chat contains request DTOs for the chat endpoints and the realtime send_message event.
package chat

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

// SendMessageRequest is the body of POST /api/chat/message and the send_message payload.
type SendMessageRequest struct {
	Content        string `json:"content" validate:"required"`
	ConversationID string `json:"conversationId,omitempty" validate:"omitempty,conversation_id"`
}

// Validator checks request DTOs and maps failures onto field-scoped validation errors.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the conversation_id tag registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("conversation_id", func(fl validator.FieldLevel) bool {
		return conversation.IsValidID(fl.Field().String())
	})
	return &Validator{validate: v}
}

// ValidateSendMessage performs shape checks. Length bounds and trimming belong to the pipeline.
func (v *Validator) ValidateSendMessage(ctx context.Context, req *SendMessageRequest) error {
	if err := v.validate.StructCtx(ctx, req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return platformerrors.NewValidationError(ctx, "", "Invalid request body")
		}
		switch fieldErrs[0].StructField() {
		case "ConversationID":
			return conversation.InvalidIDError(ctx)
		default:
			return platformerrors.NewValidationError(ctx, conversation.FieldContent, "Message cannot be empty")
		}
	}
	return nil
}
