package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
)

type mockHistoryReader struct {
	findRecentFunc func(ctx context.Context, conversationID string, limit int) ([]*conversation.Message, error)
}

func (m *mockHistoryReader) FindRecentMessages(ctx context.Context, conversationID string, limit int) ([]*conversation.Message, error) {
	return m.findRecentFunc(ctx, conversationID, limit)
}

// newestFirst builds n alternating user/assistant messages and returns them most recent first.
func newestFirst(n int) []*conversation.Message {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	out := make([]*conversation.Message, 0, n)
	for i := n - 1; i >= 0; i-- {
		sender := conversation.SenderUser
		if i%2 == 1 {
			sender = conversation.SenderAssistant
		}
		out = append(out, &conversation.Message{
			ID:         fmt.Sprintf("m%d", i),
			Content:    fmt.Sprintf("message %d", i),
			SenderType: sender,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
	}
	return out
}

func TestHistoryAssembler_Load_OrdersOldestFirstAndMapsRoles(t *testing.T) {
	reader := &mockHistoryReader{
		findRecentFunc: func(_ context.Context, _ string, limit int) ([]*conversation.Message, error) {
			msgs := newestFirst(4)
			if limit < len(msgs) {
				msgs = msgs[:limit]
			}
			return msgs, nil
		},
	}

	history, err := NewHistoryAssembler(reader, 10).Load(context.Background(), "c1", 0, "")
	require.NoError(t, err)
	require.Len(t, history, 4)

	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "message 0"}, history[0])
	assert.Equal(t, ChatMessage{Role: RoleAssistant, Content: "message 1"}, history[1])
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "message 2"}, history[2])
	assert.Equal(t, ChatMessage{Role: RoleAssistant, Content: "message 3"}, history[3])
}

func TestHistoryAssembler_Load_TruncatesToMostRecent(t *testing.T) {
	var requested int
	reader := &mockHistoryReader{
		findRecentFunc: func(_ context.Context, _ string, limit int) ([]*conversation.Message, error) {
			requested = limit
			return newestFirst(25)[:limit], nil
		},
	}

	history, err := NewHistoryAssembler(reader, 10).Load(context.Background(), "c1", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 10, requested)
	require.Len(t, history, 10)
	assert.Equal(t, "message 15", history[0].Content)
	assert.Equal(t, "message 24", history[9].Content)
}

func TestHistoryAssembler_Load_ExcludesCurrentTurn(t *testing.T) {
	var requested int
	reader := &mockHistoryReader{
		findRecentFunc: func(_ context.Context, _ string, limit int) ([]*conversation.Message, error) {
			requested = limit
			return newestFirst(20)[:limit], nil
		},
	}

	history, err := NewHistoryAssembler(reader, 0).Load(context.Background(), "c1", 3, "m19")
	require.NoError(t, err)
	assert.Equal(t, 4, requested)
	require.Len(t, history, 3)
	for _, msg := range history {
		assert.NotEqual(t, "message 19", msg.Content)
	}
	assert.Equal(t, "message 16", history[0].Content)
	assert.Equal(t, "message 18", history[2].Content)
}

func TestHistoryAssembler_Load_IgnoresStoreOrder(t *testing.T) {
	msgs := newestFirst(5)
	// Oldest-first and shuffled input must produce the same output.
	shuffled := []*conversation.Message{msgs[2], msgs[4], msgs[0], msgs[3], msgs[1]}
	reader := &mockHistoryReader{
		findRecentFunc: func(context.Context, string, int) ([]*conversation.Message, error) {
			return shuffled, nil
		},
	}

	history, err := NewHistoryAssembler(reader, 10).Load(context.Background(), "c1", 0, "")
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i, msg := range history {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}
}

func TestHistoryAssembler_Load_Empty(t *testing.T) {
	reader := &mockHistoryReader{
		findRecentFunc: func(context.Context, string, int) ([]*conversation.Message, error) {
			return nil, nil
		},
	}

	history, err := NewHistoryAssembler(reader, 10).Load(context.Background(), "c1", 0, "")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestHistoryAssembler_Load_PropagatesStoreError(t *testing.T) {
	reader := &mockHistoryReader{
		findRecentFunc: func(context.Context, string, int) ([]*conversation.Message, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := NewHistoryAssembler(reader, 10).Load(context.Background(), "c1", 0, "")
	require.Error(t, err)
}

func TestNewHistoryAssembler_DefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, NewHistoryAssembler(nil, 0).DefaultLimit())
	assert.Equal(t, 4, NewHistoryAssembler(nil, 4).DefaultLimit())
}
