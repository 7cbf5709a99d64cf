package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEngine struct {
	createCompletionFunc func(ctx context.Context, req CompletionRequest) (string, error)
}

func (m *mockEngine) CreateCompletion(ctx context.Context, req CompletionRequest) (string, error) {
	return m.createCompletionFunc(ctx, req)
}

var testParams = Params{Model: "test-model", Temperature: 0.7, MaxTokens: 600, TopP: 0.9}

func TestBuildPrompt(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}

	prompt := BuildPrompt(history, "where is my order?")

	require.Len(t, prompt, 4)
	assert.Equal(t, RoleSystem, prompt[0].Role)
	assert.Equal(t, Persona, prompt[0].Content)
	assert.Equal(t, history, prompt[1:3])
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "where is my order?"}, prompt[3])
}

func TestCompletionClient_Complete_Success(t *testing.T) {
	var got CompletionRequest
	engine := &mockEngine{
		createCompletionFunc: func(_ context.Context, req CompletionRequest) (string, error) {
			got = req
			return "  Free shipping starts at $50.  \n", nil
		},
	}

	client := NewCompletionClient(engine, testParams, time.Second, "test", zerolog.Nop())
	reply := client.Complete(context.Background(), nil, "shipping?")

	assert.False(t, reply.Fallback)
	assert.Equal(t, FallbackNone, reply.Reason)
	assert.NoError(t, reply.Err)
	assert.Equal(t, "Free shipping starts at $50.", reply.Text)
	assert.Equal(t, testParams, got.Params)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "shipping?", got.Messages[1].Content)
}

func TestCompletionClient_Complete_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		engine func(ctx context.Context, req CompletionRequest) (string, error)
		reason FallbackReason
	}{
		{
			name: "transport error",
			engine: func(context.Context, CompletionRequest) (string, error) {
				return "", errors.New("connection reset")
			},
			reason: FallbackError,
		},
		{
			name: "empty reply",
			engine: func(context.Context, CompletionRequest) (string, error) {
				return "", nil
			},
			reason: FallbackEmpty,
		},
		{
			name: "whitespace reply",
			engine: func(context.Context, CompletionRequest) (string, error) {
				return " \n\t ", nil
			},
			reason: FallbackEmpty,
		},
		{
			name: "timeout",
			engine: func(ctx context.Context, _ CompletionRequest) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
			reason: FallbackTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{createCompletionFunc: tt.engine}
			client := NewCompletionClient(engine, testParams, 20*time.Millisecond, "test", zerolog.Nop())

			reply := client.Complete(context.Background(), nil, "hello")

			assert.True(t, reply.Fallback)
			assert.Equal(t, tt.reason, reply.Reason)
			assert.Equal(t, FallbackReply, reply.Text)
		})
	}
}

func TestNewCompletionClient_DefaultTimeout(t *testing.T) {
	client := NewCompletionClient(&mockEngine{}, testParams, 0, "test", zerolog.Nop())
	assert.Equal(t, DefaultCompletionTimeout, client.timeout)
}
