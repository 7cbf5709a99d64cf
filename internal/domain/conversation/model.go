package conversation

import "time"

// SenderType identifies who authored a message.
type SenderType string

const (
	SenderUser      SenderType = "user"
	SenderAssistant SenderType = "assistant"
)

// MaxContentLength is the upper bound, in characters, of a trimmed message body.
const MaxContentLength = 2000

// Conversation is a durable chat thread. Messages are ordered by CreatedAt ascending.
type Conversation struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Messages  []*Message `json:"messages"`
}

// Message is an immutable entry in a conversation.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	Content        string     `json:"content"`
	SenderType     SenderType `json:"senderType"`
	CreatedAt      time.Time  `json:"createdAt"`
}
