package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/infrastructure/database/entities"
	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

// Repository persists conversations and messages through GORM.
type Repository struct {
	db    *gorm.DB
	clock *monotonicClock
}

var _ domain.Repository = (*Repository)(nil)

// NewRepository builds a GORM-backed conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, clock: newMonotonicClock()}
}

// CreateConversation inserts a conversation, generating an id when none is given.
func (r *Repository) CreateConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	if id == "" {
		id = uuid.NewString()
	}
	entity := &entities.Conversation{ID: id, CreatedAt: r.clock.Next()}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				fmt.Sprintf("conversation already exists: %s", id), err, "conversation-create-conflict")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation", err, "conversation-create-db-error")
	}

	return entity.EtoD(), nil
}

// ConversationExists reports whether the conversation row exists.
func (r *Repository) ConversationExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to check conversation", err, "conversation-exists-db-error")
	}
	return count > 0, nil
}

// FindConversationByID fetches a conversation with its messages oldest-first.
func (r *Repository) FindConversationByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"Conversation not found", nil, "conversation-not-found")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation", err, "conversation-find-db-error")
	}

	return entity.EtoD(), nil
}

// CreateMessage persists a message with a server-assigned id and timestamp.
func (r *Repository) CreateMessage(ctx context.Context, conversationID, content string, sender domain.SenderType) (*domain.Message, error) {
	entity := &entities.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        content,
		SenderType:     string(sender),
		CreatedAt:      r.clock.Next(),
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"Conversation not found", err, "message-create-missing-conversation")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create message", err, "message-create-db-error")
	}

	return entity.EtoD(), nil
}

// FindRecentMessages returns up to limit messages, most recent first.
func (r *Repository) FindRecentMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		return []*domain.Message{}, nil
	}

	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to fetch recent messages", err, "message-recent-db-error")
	}

	out := make([]*domain.Message, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to access database", err, "database-handle-error")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"database unreachable", err, "database-ping-error")
	}
	return nil
}
