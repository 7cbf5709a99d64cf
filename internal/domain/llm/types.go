package llm

import "context"

// Role tags a prompt entry for the completion engine.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single entry of a prompt sequence.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Params carries the model parameters sent with every completion request.
type Params struct {
	Model       string
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// CompletionRequest is an ordered prompt plus model parameters.
type CompletionRequest struct {
	Params
	Messages []ChatMessage
}

// Engine is the external completion service.
// Implementations return an error for transport failures and non-2xx replies;
// an empty string is a valid (if useless) result.
type Engine interface {
	CreateCompletion(ctx context.Context, req CompletionRequest) (string, error)
}
