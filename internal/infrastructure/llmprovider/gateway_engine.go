package llmprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/janhq/support-chat-api/internal/domain/llm"
)

// GatewayEngine calls an OpenAI-style /chat/completions endpoint exposed by an
// internal gateway such as jan llm-api.
type GatewayEngine struct {
	httpClient *resty.Client
}

var _ llm.Engine = (*GatewayEngine)(nil)

type gatewayRequest struct {
	Model       string            `json:"model"`
	Messages    []llm.ChatMessage `json:"messages"`
	Temperature float32           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	TopP        float32           `json:"top_p"`
	Stream      bool              `json:"stream"`
}

type gatewayResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewGatewayEngine creates a Resty-backed engine. apiKey is optional.
func NewGatewayEngine(baseURL, apiKey string, timeout time.Duration) *GatewayEngine {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &GatewayEngine{httpClient: client}
}

// CreateCompletion posts the prompt and returns the first choice's content.
func (e *GatewayEngine) CreateCompletion(ctx context.Context, req llm.CompletionRequest) (string, error) {
	var completion gatewayResponse
	resp, err := e.httpClient.R().
		SetContext(ctx).
		SetBody(gatewayRequest{
			Model:       req.Model,
			Messages:    req.Messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
			TopP:        req.TopP,
		}).
		SetResult(&completion).
		Post("/chat/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("completion gateway error: %d %s", resp.StatusCode(), resp.String())
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
