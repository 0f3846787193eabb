package chat

import (
	"time"

	"recipebook_backend/internal/models"
)

type Conversation struct {
	ID        string                    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Type      models.ConversationType   `gorm:"type:varchar(20);not null"`
	Status    models.ConversationStatus `gorm:"type:varchar(20);default:'open'"`
	CreatedBy string                    `gorm:"index;not null"`

	// Support conversations only
	Subject string
	Topic   models.SupportTopic `gorm:"type:varchar(20)"`

	// Denormalized preview, updated on every send
	LastMessage   string
	LastMessageAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID"`
}

func (Conversation) TableName() string {
	return "chat.conversations"
}

type ConversationParticipant struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ConversationID string `gorm:"index;not null;uniqueIndex:idx_conversation_member"`
	UserID         string `gorm:"index;not null;uniqueIndex:idx_conversation_member"`
	JoinedAt       time.Time
	LastReadAt     time.Time
}

func (ConversationParticipant) TableName() string {
	return "chat.conversation_participants"
}
