package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/infrastructure/metrics"
)

// DefaultCompletionTimeout bounds a single engine call when no timeout is configured.
const DefaultCompletionTimeout = 30 * time.Second

// FallbackReason explains why a Reply carries FallbackReply instead of engine output.
type FallbackReason string

const (
	FallbackNone    FallbackReason = ""
	FallbackError   FallbackReason = "error"
	FallbackTimeout FallbackReason = "timeout"
	FallbackEmpty   FallbackReason = "empty"
)

// Reply is the outcome of a completion attempt. Text is always usable.
type Reply struct {
	Text     string
	Fallback bool
	Reason   FallbackReason
	Err      error
}

// CompletionClient wraps an Engine with the persona, model parameters, a timeout and fallback handling.
type CompletionClient struct {
	engine   Engine
	params   Params
	timeout  time.Duration
	provider string
	log      zerolog.Logger
}

// NewCompletionClient creates a completion client. provider only labels metrics and logs.
func NewCompletionClient(engine Engine, params Params, timeout time.Duration, provider string, log zerolog.Logger) *CompletionClient {
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	return &CompletionClient{
		engine:   engine,
		params:   params,
		timeout:  timeout,
		provider: provider,
		log:      log.With().Str("component", "completion-client").Logger(),
	}
}

// BuildPrompt returns persona, history (oldest first) and the user message, in that order.
func BuildPrompt(history []ChatMessage, userMessage string) []ChatMessage {
	prompt := make([]ChatMessage, 0, len(history)+2)
	prompt = append(prompt, ChatMessage{Role: RoleSystem, Content: Persona})
	prompt = append(prompt, history...)
	prompt = append(prompt, ChatMessage{Role: RoleUser, Content: userMessage})
	return prompt
}

// Complete asks the engine for a reply. It never returns an error: every failure
// becomes a fallback Reply with the cause attached.
func (c *CompletionClient) Complete(ctx context.Context, history []ChatMessage, userMessage string) Reply {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := CompletionRequest{
		Params:   c.params,
		Messages: BuildPrompt(history, userMessage),
	}

	start := time.Now()
	text, err := c.engine.CreateCompletion(callCtx, req)
	elapsed := time.Since(start)

	reply := Reply{Text: strings.TrimSpace(text)}
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)):
		reply.Reason = FallbackTimeout
		reply.Err = err
	case err != nil:
		reply.Reason = FallbackError
		reply.Err = err
	case reply.Text == "":
		reply.Reason = FallbackEmpty
	}

	status := "ok"
	if reply.Reason != FallbackNone {
		reply.Text = FallbackReply
		reply.Fallback = true
		status = string(reply.Reason)
		metrics.RecordCompletionFallback(c.provider, string(reply.Reason))

		event := c.log.Warn().
			Str("model", c.params.Model).
			Str("reason", string(reply.Reason)).
			Dur("elapsed", elapsed)
		if reply.Err != nil {
			event = event.Err(reply.Err)
		}
		event.Msg("completion failed, using fallback reply")
	} else {
		c.log.Debug().
			Str("model", c.params.Model).
			Int("prompt_messages", len(req.Messages)).
			Dur("elapsed", elapsed).
			Msg("completion succeeded")
	}
	metrics.RecordCompletion(c.params.Model, c.provider, status, elapsed.Seconds())

	return reply
}
