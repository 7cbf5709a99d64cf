package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	domain "github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

// MemoryRepository keeps conversations in process memory. Used for DB_DRIVER=memory and tests.
type MemoryRepository struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	clock         *monotonicClock
}

var _ domain.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		conversations: make(map[string]*domain.Conversation),
		clock:         newMonotonicClock(),
	}
}

func (r *MemoryRepository) CreateConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conversations[id]; exists {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			fmt.Sprintf("conversation already exists: %s", id), nil, "conversation-create-conflict")
	}
	conv := &domain.Conversation{ID: id, CreatedAt: r.clock.Next()}
	r.conversations[id] = conv
	return &domain.Conversation{ID: conv.ID, CreatedAt: conv.CreatedAt, Messages: []*domain.Message{}}, nil
}

func (r *MemoryRepository) ConversationExists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conversations[id]
	return ok, nil
}

func (r *MemoryRepository) FindConversationByID(ctx context.Context, id string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"Conversation not found", nil, "conversation-not-found")
	}

	out := &domain.Conversation{
		ID:        conv.ID,
		CreatedAt: conv.CreatedAt,
		Messages:  make([]*domain.Message, 0, len(conv.Messages)),
	}
	for _, msg := range conv.Messages {
		cp := *msg
		out.Messages = append(out.Messages, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) CreateMessage(ctx context.Context, conversationID, content string, sender domain.SenderType) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[conversationID]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"Conversation not found", nil, "message-create-missing-conversation")
	}

	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        content,
		SenderType:     sender,
		CreatedAt:      r.clock.Next(),
	}
	conv.Messages = append(conv.Messages, msg)

	cp := *msg
	return &cp, nil
}

func (r *MemoryRepository) FindRecentMessages(_ context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[conversationID]
	if !ok || limit <= 0 {
		return []*domain.Message{}, nil
	}

	out := make([]*domain.Message, 0, min(limit, len(conv.Messages)))
	for i := len(conv.Messages) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *conv.Messages[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Ping always succeeds.
func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

// MessageCount returns the number of stored messages across all conversations.
func (r *MemoryRepository) MessageCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, conv := range r.conversations {
		n += len(conv.Messages)
	}
	return n
}

// ConversationCount returns the number of stored conversations.
func (r *MemoryRepository) ConversationCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}
