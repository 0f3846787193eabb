package services

import (
	"errors"
	"strings"

	"recipebook_backend/internal/models"
	chatmodels "recipebook_backend/internal/models/chat"
	"recipebook_backend/internal/repositories"
	chatrepo "recipebook_backend/internal/repositories/chat"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// lastMessagePreviewLen caps the denormalized conversation preview.
const lastMessagePreviewLen = 120

type ChatService interface {
	// StartDirectConversation opens (or reuses) the direct conversation
	// between the caller and the recipient and sends the first message.
	StartDirectConversation(db *gorm.DB, userID string, req *dto.StartDirectConversationRequest) (*dto.ConversationResponse, error)

	// CreateSupportConversation opens a support ticket with the caller as the
	// only participant; admins join through the admin surface.
	CreateSupportConversation(db *gorm.DB, userID string, req *dto.CreateSupportConversationRequest) (*dto.ConversationResponse, error)

	ListConversations(db *gorm.DB, userID string) (*dto.ConversationListResponse, error)
	GetConversation(db *gorm.DB, userID, conversationID string) (*dto.ConversationResponse, error)
	SendMessage(db *gorm.DB, userID, conversationID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	ListMessages(db *gorm.DB, userID, conversationID string, limit, offset int) (*dto.MessageListResponse, error)

	// SearchMessages matches message content across the caller's conversations.
	SearchMessages(db *gorm.DB, userID, query string, limit int) (*dto.MessageListResponse, error)

	MarkConversationRead(db *gorm.DB, userID, conversationID string) error
	UpdateStatus(db *gorm.DB, actorRole models.UserRole, conversationID string, status models.ConversationStatus) error
}

type chatService struct {
	conversationRepo chatrepo.ConversationRepository
	messageRepo      chatrepo.MessageRepository
	userRepo         repositories.UserRepository
	pusher           RealtimePusher
}

func NewChatService(
	conversationRepo chatrepo.ConversationRepository,
	messageRepo chatrepo.MessageRepository,
	userRepo repositories.UserRepository,
	pusher RealtimePusher,
) ChatService {
	return &chatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		pusher:           pusher,
	}
}

func (s *chatService) StartDirectConversation(db *gorm.DB, userID string, req *dto.StartDirectConversationRequest) (*dto.ConversationResponse, error) {
	if req.RecipientID == userID {
		return nil, apperrors.ErrInvalidOperation("chat", "cannot start a conversation with yourself")
	}
	if _, err := s.userRepo.FindByID(db, req.RecipientID); err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	conversation, err := s.conversationRepo.FindDirectConversation(db, userID, req.RecipientID)
	if err != nil && !errors.Is(err, chatrepo.ErrConversationNotFound) {
		return nil, apperrors.InternalError("failed to look up conversation").WithError(err)
	}
	if conversation == nil {
		conversation = &chatmodels.Conversation{
			Type:      models.ConversationTypeDirect,
			Status:    models.ConversationStatusOpen,
			CreatedBy: userID,
		}
		participants := []string{userID, req.RecipientID}
		if err := s.conversationRepo.CreateConversation(db, conversation, participants); err != nil {
			return nil, apperrors.InternalError("failed to create conversation").WithError(err)
		}
		for _, id := range participants {
			conversation.Participants = append(conversation.Participants, chatmodels.ConversationParticipant{
				ConversationID: conversation.ID,
				UserID:         id,
			})
		}
	}

	if _, err := s.sendMessage(db, conversation, userID, req.Content); err != nil {
		return nil, err
	}
	return s.toConversationResponse(db, conversation, userID), nil
}

func (s *chatService) CreateSupportConversation(db *gorm.DB, userID string, req *dto.CreateSupportConversationRequest) (*dto.ConversationResponse, error) {
	conversation := &chatmodels.Conversation{
		Type:      models.ConversationTypeSupport,
		Status:    models.ConversationStatusOpen,
		CreatedBy: userID,
		Subject:   req.Subject,
		Topic:     models.SupportTopic(req.Topic),
	}
	if err := s.conversationRepo.CreateConversation(db, conversation, []string{userID}); err != nil {
		return nil, apperrors.InternalError("failed to create support conversation").WithError(err)
	}
	if _, err := s.sendMessage(db, conversation, userID, req.Content); err != nil {
		return nil, err
	}
	return s.toConversationResponse(db, conversation, userID), nil
}

func (s *chatService) ListConversations(db *gorm.DB, userID string) (*dto.ConversationListResponse, error) {
	conversations, err := s.conversationRepo.FindUserConversations(db, userID)
	if err != nil {
		return nil, apperrors.InternalError("failed to list conversations").WithError(err)
	}
	items := make([]*dto.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		items = append(items, s.toConversationResponse(db, &conversations[i], userID))
	}
	return &dto.ConversationListResponse{Conversations: items, Total: len(items)}, nil
}

func (s *chatService) GetConversation(db *gorm.DB, userID, conversationID string) (*dto.ConversationResponse, error) {
	conversation, err := s.findMemberConversation(db, userID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.toConversationResponse(db, conversation, userID), nil
}

func (s *chatService) SendMessage(db *gorm.DB, userID, conversationID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	conversation, err := s.findMemberConversation(db, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation.Status == models.ConversationStatusClosed {
		return nil, apperrors.ErrInvalidOperation("chat", "conversation is closed")
	}
	return s.sendMessage(db, conversation, userID, req.Content)
}

func (s *chatService) sendMessage(db *gorm.DB, conversation *chatmodels.Conversation, senderID, content string) (*dto.MessageResponse, error) {
	message := &chatmodels.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.messageRepo.CreateMessage(db, message); err != nil {
		return nil, apperrors.InternalError("failed to send message").WithError(err)
	}

	preview := content
	if len(preview) > lastMessagePreviewLen {
		preview = preview[:lastMessagePreviewLen]
	}
	if err := s.conversationRepo.UpdateLastMessage(db, conversation.ID, preview); err != nil {
		return nil, apperrors.InternalError("failed to update conversation preview").WithError(err)
	}
	// The sender's own read marker moves with the send.
	_ = s.conversationRepo.UpdateLastRead(db, conversation.ID, senderID)

	resp := toMessageResponse(message)
	s.pushMessage(db, conversation, senderID, resp)
	return resp, nil
}

func (s *chatService) pushMessage(db *gorm.DB, conversation *chatmodels.Conversation, senderID string, message *dto.MessageResponse) {
	if s.pusher == nil {
		return
	}
	for i := range conversation.Participants {
		userID := conversation.Participants[i].UserID
		if userID == senderID {
			continue
		}
		s.pusher.PushToUser(userID, map[string]interface{}{
			"event": "message",
			"data":  message,
		})
	}
}

func (s *chatService) ListMessages(db *gorm.DB, userID, conversationID string, limit, offset int) (*dto.MessageListResponse, error) {
	if _, err := s.findMemberConversation(db, userID, conversationID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindMessagesByConversation(db, conversationID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError("failed to list messages").WithError(err)
	}
	items := make([]*dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, toMessageResponse(&messages[i]))
	}
	return &dto.MessageListResponse{Messages: items, Total: len(items)}, nil
}

func (s *chatService) SearchMessages(db *gorm.DB, userID, query string, limit int) (*dto.MessageListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewBadRequestError("search query is required")
	}
	messages, err := s.messageRepo.SearchMessages(db, userID, query, limit)
	if err != nil {
		return nil, apperrors.InternalError("failed to search messages").WithError(err)
	}
	items := make([]*dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, toMessageResponse(&messages[i]))
	}
	return &dto.MessageListResponse{Messages: items, Total: len(items)}, nil
}

func (s *chatService) MarkConversationRead(db *gorm.DB, userID, conversationID string) error {
	if _, err := s.findMemberConversation(db, userID, conversationID); err != nil {
		return err
	}
	if err := s.conversationRepo.UpdateLastRead(db, conversationID, userID); err != nil {
		return apperrors.InternalError("failed to update read marker").WithError(err)
	}
	return nil
}

// UpdateStatus closes, reopens or archives a support conversation. Admin only.
func (s *chatService) UpdateStatus(db *gorm.DB, actorRole models.UserRole, conversationID string, status models.ConversationStatus) error {
	if actorRole != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	switch status {
	case models.ConversationStatusOpen, models.ConversationStatusClosed, models.ConversationStatusArchived:
	default:
		return apperrors.ErrInvalidOperation("chat", "unknown conversation status")
	}
	if _, err := s.conversationRepo.FindConversationByID(db, conversationID); err != nil {
		if errors.Is(err, chatrepo.ErrConversationNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError("failed to load conversation").WithError(err)
	}
	if err := s.conversationRepo.UpdateStatus(db, conversationID, status); err != nil {
		return apperrors.InternalError("failed to update conversation status").WithError(err)
	}
	return nil
}

func (s *chatService) findMemberConversation(db *gorm.DB, userID, conversationID string) (*chatmodels.Conversation, error) {
	conversation, err := s.conversationRepo.FindConversationByID(db, conversationID)
	if err != nil {
		if errors.Is(err, chatrepo.ErrConversationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError("failed to load conversation").WithError(err)
	}
	member, err := s.conversationRepo.IsParticipant(db, conversationID, userID)
	if err != nil {
		return nil, apperrors.InternalError("failed to check membership").WithError(err)
	}
	if !member {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return conversation, nil
}

func (s *chatService) toConversationResponse(db *gorm.DB, conversation *chatmodels.Conversation, viewerID string) *dto.ConversationResponse {
	resp := &dto.ConversationResponse{
		ID:            conversation.ID,
		Type:          string(conversation.Type),
		Status:        string(conversation.Status),
		Subject:       conversation.Subject,
		Topic:         string(conversation.Topic),
		LastMessage:   conversation.LastMessage,
		LastMessageAt: conversation.LastMessageAt,
		CreatedAt:     conversation.CreatedAt,
	}
	if unread, err := s.messageRepo.CountUnread(db, conversation.ID, viewerID); err == nil {
		resp.UnreadCount = unread
	}

	if len(conversation.Participants) > 0 {
		ids := make([]string, 0, len(conversation.Participants))
		for i := range conversation.Participants {
			ids = append(ids, conversation.Participants[i].UserID)
		}
		if users, err := s.userRepo.FindByIDs(db, ids); err == nil {
			for i := range users {
				resp.Participants = append(resp.Participants, &dto.UserResponse{
					ID:          users[i].ID,
					DisplayName: users[i].DisplayName,
					AvatarURL:   users[i].AvatarURL,
				})
			}
		}
	}
	return resp
}

func toMessageResponse(message *chatmodels.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		CreatedAt:      message.CreatedAt,
	}
}
