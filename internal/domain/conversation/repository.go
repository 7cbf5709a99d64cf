package conversation

import "context"

// Repository is the persistence contract the chat core consumes.
// Implementations return platformerrors with ErrorTypeNotFound for lookups that miss
// and ErrorTypeDatabaseError for storage failures.
type Repository interface {
	// CreateConversation inserts a conversation. An empty id asks the store to assign one.
	CreateConversation(ctx context.Context, id string) (*Conversation, error)

	// ConversationExists reports whether a conversation row exists.
	ConversationExists(ctx context.Context, id string) (bool, error)

	// FindConversationByID returns the conversation with its messages oldest-first.
	FindConversationByID(ctx context.Context, id string) (*Conversation, error)

	// CreateMessage persists a message and returns it with server-assigned fields.
	CreateMessage(ctx context.Context, conversationID, content string, sender SenderType) (*Message, error)

	// FindRecentMessages returns up to limit messages, most recent first.
	FindRecentMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error)

	// Ping checks store connectivity.
	Ping(ctx context.Context) error
}
