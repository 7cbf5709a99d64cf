package llm

import (
	"context"
	"slices"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
)

// DefaultHistoryLimit bounds the context window when the caller does not choose one.
const DefaultHistoryLimit = 10

// HistoryReader is the slice of the store contract the assembler needs.
type HistoryReader interface {
	FindRecentMessages(ctx context.Context, conversationID string, limit int) ([]*conversation.Message, error)
}

// HistoryAssembler loads bounded, chronologically ordered context for a conversation.
type HistoryAssembler struct {
	reader       HistoryReader
	defaultLimit int
}

// NewHistoryAssembler creates an assembler. A non-positive defaultLimit falls back to DefaultHistoryLimit.
func NewHistoryAssembler(reader HistoryReader, defaultLimit int) *HistoryAssembler {
	if defaultLimit <= 0 {
		defaultLimit = DefaultHistoryLimit
	}
	return &HistoryAssembler{reader: reader, defaultLimit: defaultLimit}
}

// DefaultLimit returns the limit used when Load is called with max <= 0.
func (a *HistoryAssembler) DefaultLimit() int {
	return a.defaultLimit
}

// Load returns at most max prior messages of the conversation, oldest first.
// excludeID drops one message (the turn being answered) so it is not sent twice.
func (a *HistoryAssembler) Load(ctx context.Context, conversationID string, max int, excludeID string) ([]ChatMessage, error) {
	if max <= 0 {
		max = a.defaultLimit
	}

	fetch := max
	if excludeID != "" {
		fetch++
	}

	recent, err := a.reader.FindRecentMessages(ctx, conversationID, fetch)
	if err != nil {
		return nil, err
	}

	kept := make([]*conversation.Message, 0, len(recent))
	for _, msg := range recent {
		if msg == nil || msg.ID == excludeID {
			continue
		}
		kept = append(kept, msg)
	}

	// Order is re-derived from timestamps; the store's fetch order is not trusted.
	slices.SortStableFunc(kept, func(a, b *conversation.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if len(kept) > max {
		kept = kept[len(kept)-max:]
	}

	history := make([]ChatMessage, 0, len(kept))
	for _, msg := range kept {
		role := RoleAssistant
		if msg.SenderType == conversation.SenderUser {
			role = RoleUser
		}
		history = append(history, ChatMessage{Role: role, Content: msg.Content})
	}
	return history, nil
}
