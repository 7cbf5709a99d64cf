package entities

import (
	"time"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
)

// Message represents the database schema for messages.
type Message struct {
	ID             string    `gorm:"type:varchar(36);primaryKey"`
	ConversationID string    `gorm:"type:varchar(36);not null;index:idx_messages_conversation_created,priority:1"`
	Content        string    `gorm:"type:text;not null"`
	SenderType     string    `gorm:"type:varchar(16);not null"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime:false;index:idx_messages_conversation_created,priority:2"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts the entity to the domain model.
func (m *Message) EtoD() *conversation.Message {
	return &conversation.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Content:        m.Content,
		SenderType:     conversation.SenderType(m.SenderType),
		CreatedAt:      m.CreatedAt,
	}
}
