package chat

import (
	chatmodels "recipebook_backend/internal/models/chat"

	"gorm.io/gorm"
)

type MessageRepository interface {
	CreateMessage(db *gorm.DB, message *chatmodels.Message) error
	FindMessagesByConversation(db *gorm.DB, conversationID string, limit, offset int) ([]chatmodels.Message, error)
	CountUnread(db *gorm.DB, conversationID, userID string) (int64, error)
	SearchMessages(db *gorm.DB, userID, query string, limit int) ([]chatmodels.Message, error)
}

type MessageRepositoryImpl struct{}

func NewMessageRepository() MessageRepository {
	return &MessageRepositoryImpl{}
}

func (r *MessageRepositoryImpl) CreateMessage(db *gorm.DB, message *chatmodels.Message) error {
	return db.Create(message).Error
}

// FindMessagesByConversation returns messages in chronological order.
func (r *MessageRepositoryImpl) FindMessagesByConversation(db *gorm.DB, conversationID string, limit, offset int) ([]chatmodels.Message, error) {
	if limit < 1 {
		limit = 50
	}
	var messages []chatmodels.Message
	err := db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	return messages, err
}

// CountUnread counts messages sent by others after the user's last-read mark.
func (r *MessageRepositoryImpl) CountUnread(db *gorm.DB, conversationID, userID string) (int64, error) {
	var count int64
	err := db.Model(&chatmodels.Message{}).
		Where("conversation_id = ? AND sender_id != ?", conversationID, userID).
		Where("created_at > (SELECT last_read_at FROM chat.conversation_participants WHERE conversation_id = ? AND user_id = ?)",
			conversationID, userID).
		Count(&count).Error
	return count, err
}

func (r *MessageRepositoryImpl) SearchMessages(db *gorm.DB, userID, query string, limit int) ([]chatmodels.Message, error) {
	if limit < 1 {
		limit = 50
	}
	var messages []chatmodels.Message
	err := db.Where("content ILIKE ?", "%"+query+"%").
		Where("conversation_id IN (SELECT conversation_id FROM chat.conversation_participants WHERE user_id = ?)", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
