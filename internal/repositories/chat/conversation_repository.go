package chat

import (
	"errors"
	"time"

	"recipebook_backend/internal/models"
	chatmodels "recipebook_backend/internal/models/chat"

	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
)

type ConversationRepository interface {
	CreateConversation(db *gorm.DB, conversation *chatmodels.Conversation, participantIDs []string) error
	FindConversationByID(db *gorm.DB, id string) (*chatmodels.Conversation, error)
	FindUserConversations(db *gorm.DB, userID string) ([]chatmodels.Conversation, error)
	FindDirectConversation(db *gorm.DB, userA, userB string) (*chatmodels.Conversation, error)
	IsParticipant(db *gorm.DB, conversationID, userID string) (bool, error)
	UpdateLastMessage(db *gorm.DB, conversationID, preview string) error
	UpdateStatus(db *gorm.DB, conversationID string, status models.ConversationStatus) error
	UpdateLastRead(db *gorm.DB, conversationID, userID string) error
	CountConversations(db *gorm.DB) (int64, error)
	FindByStatus(db *gorm.DB, status models.ConversationStatus) ([]chatmodels.Conversation, error)
}

type ConversationRepositoryImpl struct{}

func NewConversationRepository() ConversationRepository {
	return &ConversationRepositoryImpl{}
}

// CreateConversation inserts the conversation and its participant rows in one
// transaction.
func (r *ConversationRepositoryImpl) CreateConversation(db *gorm.DB, conversation *chatmodels.Conversation, participantIDs []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, userID := range participantIDs {
			participant := &chatmodels.ConversationParticipant{
				ConversationID: conversation.ID,
				UserID:         userID,
				JoinedAt:       now,
				LastReadAt:     now,
			}
			if err := tx.Create(participant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ConversationRepositoryImpl) FindConversationByID(db *gorm.DB, id string) (*chatmodels.Conversation, error) {
	var conversation chatmodels.Conversation
	err := db.Preload("Participants").First(&conversation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepositoryImpl) FindUserConversations(db *gorm.DB, userID string) ([]chatmodels.Conversation, error) {
	var conversations []chatmodels.Conversation
	err := db.Preload("Participants").
		Joins("JOIN chat.conversation_participants cp ON cp.conversation_id = \"chat\".\"conversations\".id").
		Where("cp.user_id = ?", userID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// FindDirectConversation returns the existing direct conversation between two
// users, or ErrConversationNotFound.
func (r *ConversationRepositoryImpl) FindDirectConversation(db *gorm.DB, userA, userB string) (*chatmodels.Conversation, error) {
	var conversation chatmodels.Conversation
	err := db.Preload("Participants").
		Where("type = ?", models.ConversationTypeDirect).
		Where("id IN (SELECT conversation_id FROM chat.conversation_participants WHERE user_id = ?)", userA).
		Where("id IN (SELECT conversation_id FROM chat.conversation_participants WHERE user_id = ?)", userB).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepositoryImpl) IsParticipant(db *gorm.DB, conversationID, userID string) (bool, error) {
	var count int64
	err := db.Model(&chatmodels.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ConversationRepositoryImpl) UpdateLastMessage(db *gorm.DB, conversationID, preview string) error {
	return db.Model(&chatmodels.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":    preview,
			"last_message_at": time.Now(),
		}).Error
}

func (r *ConversationRepositoryImpl) UpdateStatus(db *gorm.DB, conversationID string, status models.ConversationStatus) error {
	result := db.Model(&chatmodels.Conversation{}).
		Where("id = ?", conversationID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepositoryImpl) UpdateLastRead(db *gorm.DB, conversationID, userID string) error {
	return db.Model(&chatmodels.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", time.Now()).Error
}

func (r *ConversationRepositoryImpl) CountConversations(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&chatmodels.Conversation{}).Count(&count).Error
	return count, err
}

func (r *ConversationRepositoryImpl) FindByStatus(db *gorm.DB, status models.ConversationStatus) ([]chatmodels.Conversation, error) {
	var conversations []chatmodels.Conversation
	err := db.Preload("Participants").
		Where("status = ?", status).
		Order("last_message_at DESC").
		Find(&conversations).Error
	return conversations, err
}
