package services

import (
	"testing"

	"recipebook_backend/internal/models"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetUserRole_GuardRails(t *testing.T) {
	t.Parallel()

	admin := &models.User{BaseModel: models.BaseModel{ID: "admin"}, Role: models.UserRoleAdmin}
	paul := &models.User{BaseModel: models.BaseModel{ID: "paul"}, Role: models.UserRoleUser}
	userRepo := newFakeUserRepo(admin, paul)
	svc := NewAdminService(userRepo, newFakeRecipeRepo(), newFakeNotificationRepo(), newFakeConversationRepo())

	// No self-demotion.
	err := svc.SetUserRole(nil, "admin", "admin", models.UserRoleUser)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)

	err = svc.SetUserRole(nil, "admin", "paul", "superuser")
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)

	require.NoError(t, svc.SetUserRole(nil, "admin", "paul", models.UserRoleAdmin))
	stored, _ := userRepo.FindByID(nil, "paul")
	assert.Equal(t, models.UserRoleAdmin, stored.Role)
}

func TestAdminDeleteUser_RemovesAccountAndRecipes(t *testing.T) {
	t.Parallel()

	admin := &models.User{BaseModel: models.BaseModel{ID: "admin"}, Role: models.UserRoleAdmin}
	paul := &models.User{BaseModel: models.BaseModel{ID: "paul"}}
	userRepo := newFakeUserRepo(admin, paul)
	recipeRepo := newFakeRecipeRepo(
		&models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "paul"},
		&models.Recipe{BaseModel: models.BaseModel{ID: "r2"}, AuthorID: "admin"},
	)
	svc := NewAdminService(userRepo, recipeRepo, newFakeNotificationRepo(), newFakeConversationRepo())

	err := svc.DeleteUser(nil, "admin", "admin")
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)

	require.NoError(t, svc.DeleteUser(nil, "admin", "paul"))

	_, err = userRepo.FindByID(nil, "paul")
	assert.Error(t, err)
	_, err = recipeRepo.FindRecipeByID(nil, "r1")
	assert.Error(t, err)
	_, err = recipeRepo.FindRecipeByID(nil, "r2")
	assert.NoError(t, err)
}

func TestGetDashboardStats_CountsSupportTickets(t *testing.T) {
	t.Parallel()

	userRepo := newFakeUserRepo(
		&models.User{BaseModel: models.BaseModel{ID: "u1"}},
		&models.User{BaseModel: models.BaseModel{ID: "u2"}},
	)
	recipeRepo := newFakeRecipeRepo(&models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "u1"})
	conversationRepo := newFakeConversationRepo()
	notificationRepo := newFakeNotificationRepo()

	chatSvc := NewChatService(conversationRepo, &fakeMessageRepo{}, userRepo, nil)
	_, err := chatSvc.CreateSupportConversation(nil, "u1", &dto.CreateSupportConversationRequest{
		Subject: "Souci", Topic: "bug", Content: "Ça casse",
	})
	require.NoError(t, err)
	_, err = chatSvc.StartDirectConversation(nil, "u1", &dto.StartDirectConversationRequest{
		RecipientID: "u2", Content: "salut",
	})
	require.NoError(t, err)

	require.NoError(t, notificationRepo.CreateNotification(nil, &models.Notification{UserID: "u1", Type: "recipe_new", Message: "x"}))

	svc := NewAdminService(userRepo, recipeRepo, notificationRepo, conversationRepo)
	stats, err := svc.GetDashboardStats(nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalRecipes)
	assert.Equal(t, int64(2), stats.TotalConversations)
	assert.Equal(t, int64(1), stats.UnreadNotifications)
	// Only the support conversation counts as a ticket.
	assert.Equal(t, int64(1), stats.OpenSupportTickets)
}

func TestListSupportConversations_FiltersDirect(t *testing.T) {
	t.Parallel()

	userRepo := newFakeUserRepo(
		&models.User{BaseModel: models.BaseModel{ID: "u1"}},
		&models.User{BaseModel: models.BaseModel{ID: "u2"}},
	)
	conversationRepo := newFakeConversationRepo()
	chatSvc := NewChatService(conversationRepo, &fakeMessageRepo{}, userRepo, nil)

	_, err := chatSvc.CreateSupportConversation(nil, "u1", &dto.CreateSupportConversationRequest{
		Subject: "Idée", Topic: "improvement", Content: "Et si...",
	})
	require.NoError(t, err)
	_, err = chatSvc.StartDirectConversation(nil, "u1", &dto.StartDirectConversationRequest{
		RecipientID: "u2", Content: "salut",
	})
	require.NoError(t, err)

	svc := NewAdminService(userRepo, newFakeRecipeRepo(), newFakeNotificationRepo(), conversationRepo)
	resp, err := svc.ListSupportConversations(nil, models.ConversationStatusOpen)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Idée", resp.Conversations[0].Subject)
}
