package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"recipebook_backend/internal/models"
	chatmodels "recipebook_backend/internal/models/chat"
	chatrepo "recipebook_backend/internal/repositories/chat"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*chatmodels.Conversation
	participants  map[string][]string // conversationID -> userIDs
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]*chatmodels.Conversation),
		participants:  make(map[string][]string),
	}
}

func (r *fakeConversationRepo) CreateConversation(db *gorm.DB, conversation *chatmodels.Conversation, participantIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conversation.ID == "" {
		conversation.ID = uuid.NewString()
	}
	conversation.CreatedAt = time.Now()
	clone := *conversation
	r.conversations[conversation.ID] = &clone
	r.participants[conversation.ID] = append([]string(nil), participantIDs...)
	return nil
}

func (r *fakeConversationRepo) FindConversationByID(db *gorm.DB, id string) (*chatmodels.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, chatrepo.ErrConversationNotFound
	}
	clone := *conversation
	clone.Participants = nil
	for _, userID := range r.participants[id] {
		clone.Participants = append(clone.Participants, chatmodels.ConversationParticipant{
			ConversationID: id,
			UserID:         userID,
		})
	}
	return &clone, nil
}

func (r *fakeConversationRepo) FindUserConversations(db *gorm.DB, userID string) ([]chatmodels.Conversation, error) {
	r.mu.Lock()
	ids := make([]string, 0)
	for id, members := range r.participants {
		for _, member := range members {
			if member == userID {
				ids = append(ids, id)
			}
		}
	}
	r.mu.Unlock()

	out := make([]chatmodels.Conversation, 0, len(ids))
	for _, id := range ids {
		if conversation, err := r.FindConversationByID(db, id); err == nil {
			out = append(out, *conversation)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) FindDirectConversation(db *gorm.DB, userA, userB string) (*chatmodels.Conversation, error) {
	r.mu.Lock()
	var found string
	for id, conversation := range r.conversations {
		if conversation.Type != models.ConversationTypeDirect {
			continue
		}
		members := r.participants[id]
		if len(members) == 2 && contains(members, userA) && contains(members, userB) {
			found = id
			break
		}
	}
	r.mu.Unlock()
	if found == "" {
		return nil, chatrepo.ErrConversationNotFound
	}
	return r.FindConversationByID(db, found)
}

func (r *fakeConversationRepo) IsParticipant(db *gorm.DB, conversationID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return contains(r.participants[conversationID], userID), nil
}

func (r *fakeConversationRepo) UpdateLastMessage(db *gorm.DB, conversationID, preview string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[conversationID]
	if !ok {
		return chatrepo.ErrConversationNotFound
	}
	conversation.LastMessage = preview
	conversation.LastMessageAt = time.Now()
	return nil
}

func (r *fakeConversationRepo) UpdateStatus(db *gorm.DB, conversationID string, status models.ConversationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[conversationID]
	if !ok {
		return chatrepo.ErrConversationNotFound
	}
	conversation.Status = status
	return nil
}

func (r *fakeConversationRepo) UpdateLastRead(db *gorm.DB, conversationID, userID string) error {
	return nil
}

func (r *fakeConversationRepo) CountConversations(db *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.conversations)), nil
}

func (r *fakeConversationRepo) FindByStatus(db *gorm.DB, status models.ConversationStatus) ([]chatmodels.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chatmodels.Conversation
	for _, conversation := range r.conversations {
		if conversation.Status == status {
			out = append(out, *conversation)
		}
	}
	return out, nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []chatmodels.Message
}

func (r *fakeMessageRepo) CreateMessage(db *gorm.DB, message *chatmodels.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *fakeMessageRepo) FindMessagesByConversation(db *gorm.DB, conversationID string, limit, offset int) ([]chatmodels.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chatmodels.Message
	for i := range r.messages {
		if r.messages[i].ConversationID == conversationID {
			out = append(out, r.messages[i])
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) CountUnread(db *gorm.DB, conversationID, userID string) (int64, error) {
	return 0, nil
}

func (r *fakeMessageRepo) SearchMessages(db *gorm.DB, userID, query string, limit int) ([]chatmodels.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chatmodels.Message
	for i := range r.messages {
		if strings.Contains(strings.ToLower(r.messages[i].Content), strings.ToLower(query)) {
			out = append(out, r.messages[i])
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func newChatServiceForTest(users ...*models.User) (ChatService, *fakeConversationRepo, *fakeMessageRepo, *fakePusher) {
	conversationRepo := newFakeConversationRepo()
	messageRepo := &fakeMessageRepo{}
	pusher := newFakePusher()
	svc := NewChatService(conversationRepo, messageRepo, newFakeUserRepo(users...), pusher)
	return svc, conversationRepo, messageRepo, pusher
}

func TestStartDirectConversation_ReusesExisting(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}, DisplayName: "Alice"}
	bob := &models.User{BaseModel: models.BaseModel{ID: "bob"}, DisplayName: "Bob"}
	svc, conversationRepo, _, pusher := newChatServiceForTest(alice, bob)

	first, err := svc.StartDirectConversation(nil, "alice", &dto.StartDirectConversationRequest{
		RecipientID: "bob", Content: "Salut !",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.ConversationTypeDirect), first.Type)

	// The recipient got the realtime push, the sender did not.
	assert.Equal(t, 1, pusher.countFor("bob"))
	assert.Equal(t, 0, pusher.countFor("alice"))

	second, err := svc.StartDirectConversation(nil, "bob", &dto.StartDirectConversationRequest{
		RecipientID: "alice", Content: "Salut toi",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, _ := conversationRepo.CountConversations(nil)
	assert.Equal(t, int64(1), count)
}

func TestStartDirectConversation_SelfRejected(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	svc, _, _, _ := newChatServiceForTest(alice)

	_, err := svc.StartDirectConversation(nil, "alice", &dto.StartDirectConversationRequest{
		RecipientID: "alice", Content: "echo",
	})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestSendMessage_NonMemberForbidden(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	bob := &models.User{BaseModel: models.BaseModel{ID: "bob"}}
	eve := &models.User{BaseModel: models.BaseModel{ID: "eve"}}
	svc, _, _, _ := newChatServiceForTest(alice, bob, eve)

	conversation, err := svc.StartDirectConversation(nil, "alice", &dto.StartDirectConversationRequest{
		RecipientID: "bob", Content: "privé",
	})
	require.NoError(t, err)

	_, err = svc.SendMessage(nil, "eve", conversation.ID, &dto.SendMessageRequest{Content: "coucou"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientPermissions))

	_, err = svc.ListMessages(nil, "eve", conversation.ID, 50, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientPermissions))
}

func TestSendMessage_ClosedConversationRejected(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	svc, _, _, _ := newChatServiceForTest(alice)

	conversation, err := svc.CreateSupportConversation(nil, "alice", &dto.CreateSupportConversationRequest{
		Subject: "Bug d'affichage", Topic: "bug", Content: "La page plante",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(nil, models.UserRoleAdmin, conversation.ID, models.ConversationStatusClosed))

	_, err = svc.SendMessage(nil, "alice", conversation.ID, &dto.SendMessageRequest{Content: "toujours là ?"})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestUpdateStatus_AdminOnly(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	svc, _, _, _ := newChatServiceForTest(alice)

	conversation, err := svc.CreateSupportConversation(nil, "alice", &dto.CreateSupportConversationRequest{
		Subject: "Question", Topic: "other", Content: "Comment faire ?",
	})
	require.NoError(t, err)

	err = svc.UpdateStatus(nil, models.UserRoleUser, conversation.ID, models.ConversationStatusClosed)
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientPermissions))

	err = svc.UpdateStatus(nil, models.UserRoleAdmin, conversation.ID, "frozen")
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestSendMessage_UpdatesPreviewTruncated(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	bob := &models.User{BaseModel: models.BaseModel{ID: "bob"}}
	svc, conversationRepo, _, _ := newChatServiceForTest(alice, bob)

	long := ""
	for i := 0; i < lastMessagePreviewLen+40; i++ {
		long += "a"
	}
	conversation, err := svc.StartDirectConversation(nil, "alice", &dto.StartDirectConversationRequest{
		RecipientID: "bob", Content: long,
	})
	require.NoError(t, err)

	stored, err := conversationRepo.FindConversationByID(nil, conversation.ID)
	require.NoError(t, err)
	assert.Len(t, stored.LastMessage, lastMessagePreviewLen)
}

func TestSearchMessages_MatchesContent(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	bob := &models.User{BaseModel: models.BaseModel{ID: "bob"}}
	svc, _, _, _ := newChatServiceForTest(alice, bob)

	conversation, err := svc.StartDirectConversation(nil, "alice", &dto.StartDirectConversationRequest{
		RecipientID: "bob", Content: "On fait une Ratatouille ce soir ?",
	})
	require.NoError(t, err)
	_, err = svc.SendMessage(nil, "bob", conversation.ID, &dto.SendMessageRequest{Content: "Plutôt un gratin"})
	require.NoError(t, err)

	resp, err := svc.SearchMessages(nil, "alice", "ratatouille", 50)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Contains(t, resp.Messages[0].Content, "Ratatouille")

	_, err = svc.SearchMessages(nil, "alice", "   ", 50)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 400, appErr.HTTPCode)
}
