package llmprovider

import (
	"fmt"
	"net/http"

	"github.com/janhq/support-chat-api/internal/config"
	"github.com/janhq/support-chat-api/internal/domain/llm"
)

// NewEngine selects the completion engine named by COMPLETION_PROVIDER.
// Per-call deadlines come from the completion client; the HTTP timeouts here are a backstop.
func NewEngine(cfg *config.Config) (llm.Engine, error) {
	backstop := cfg.CompletionTimeout * 2
	switch cfg.CompletionProvider {
	case config.CompletionProviderOpenAI:
		return NewOpenAIEngine(cfg.CompletionAPIKey, cfg.CompletionBaseURL, &http.Client{Timeout: backstop}), nil
	case config.CompletionProviderGateway:
		return NewGatewayEngine(cfg.CompletionBaseURL, cfg.CompletionAPIKey, backstop), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.CompletionProvider)
	}
}
