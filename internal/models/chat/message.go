package chat

import "time"

type Message struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ConversationID string `gorm:"index;not null"`
	SenderID       string `gorm:"index;not null"`
	Content        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

func (Message) TableName() string {
	return "chat.messages"
}
