package conversation

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

const (
	FieldContent        = "content"
	FieldConversationID = "conversationId"
)

var idPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidID reports whether id is UUID-shaped.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}

// NormalizeID lowercases a UUID-shaped identifier so lookups and room keys agree.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ValidateContent trims content and enforces the 1..MaxContentLength character bounds.
func ValidateContent(ctx context.Context, content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", platformerrors.NewValidationError(ctx, FieldContent, "Message cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", platformerrors.NewValidationError(ctx, FieldContent, "Message is too long (maximum 2000 characters)")
	}
	return trimmed, nil
}

// ValidateID checks an optional conversation identifier. Empty is allowed and returned as-is.
func ValidateID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", nil
	}
	if !IsValidID(id) {
		return "", InvalidIDError(ctx)
	}
	return NormalizeID(id), nil
}

// InvalidIDError is the validation error for a malformed conversation identifier.
func InvalidIDError(ctx context.Context) error {
	return platformerrors.NewValidationError(ctx, FieldConversationID, "Invalid conversation ID format")
}
