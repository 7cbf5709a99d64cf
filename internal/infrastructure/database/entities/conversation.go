package entities

import (
	"time"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
)

// Conversation represents the database schema for conversations.
type Conversation struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`

	Messages []Message `gorm:"foreignKey:ConversationID;references:ID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// EtoD converts the entity to the domain model. Messages keep the order they were loaded in.
func (c *Conversation) EtoD() *conversation.Conversation {
	conv := &conversation.Conversation{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Messages:  make([]*conversation.Message, 0, len(c.Messages)),
	}
	for i := range c.Messages {
		conv.Messages = append(conv.Messages, c.Messages[i].EtoD())
	}
	return conv
}
