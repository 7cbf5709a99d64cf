package llmprovider

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/janhq/support-chat-api/internal/domain/llm"
)

// OpenAIEngine talks to any OpenAI-compatible chat completions API (Groq by default).
type OpenAIEngine struct {
	client *openai.Client
}

var _ llm.Engine = (*OpenAIEngine)(nil)

// NewOpenAIEngine creates an engine for apiKey against baseURL. An empty baseURL keeps the library default.
func NewOpenAIEngine(apiKey, baseURL string, httpClient *http.Client) *OpenAIEngine {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIEngine{client: openai.NewClientWithConfig(cfg)}
}

// CreateCompletion sends the prompt and returns the first choice's content.
func (e *OpenAIEngine) CreateCompletion(ctx context.Context, req llm.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIRole(role llm.Role) string {
	switch role {
	case llm.RoleSystem:
		return openai.ChatMessageRoleSystem
	case llm.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
