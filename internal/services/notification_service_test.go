package services

import (
	"errors"
	"fmt"
	"testing"

	"recipebook_backend/internal/models"
	"recipebook_backend/internal/repositories"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyRecipePublished_OneNotificationPerFollower(t *testing.T) {
	t.Parallel()

	notificationRepo := newFakeNotificationRepo()
	pusher := newFakePusher()
	svc := NewNotificationService(notificationRepo, pusher)

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}, DisplayName: "Marie"}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author", Title: "Ratatouille"}

	followerIDs := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		followerIDs = append(followerIDs, fmt.Sprintf("follower-%d", i))
	}

	report, err := svc.NotifyRecipePublished(nil, author, recipe, followerIDs)
	require.NoError(t, err)
	assert.Equal(t, 25, report.Total)
	assert.Equal(t, 25, report.Delivered)
	assert.Equal(t, 0, report.Failed)

	for _, followerID := range followerIDs {
		notifications := notificationRepo.forUser(followerID)
		require.Len(t, notifications, 1, "follower %s", followerID)
		assert.Equal(t, repositories.NotificationTypeNewRecipe, notifications[0].Type)
		assert.Equal(t, "Marie a publié une nouvelle recette : Ratatouille", notifications[0].Message)
		assert.Equal(t, "/recipe/r1", notifications[0].LinkTo)
		assert.Equal(t, 1, pusher.countFor(followerID))
	}
}

func TestNotifyRecipePublished_NoFollowers(t *testing.T) {
	t.Parallel()

	svc := NewNotificationService(newFakeNotificationRepo(), nil)
	author := &models.User{BaseModel: models.BaseModel{ID: "author"}}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}}

	report, err := svc.NotifyRecipePublished(nil, author, recipe, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Delivered)
}

func TestNotifyRecipePublished_PartialFailureKeepsSuccesses(t *testing.T) {
	t.Parallel()

	notificationRepo := newFakeNotificationRepo()
	notificationRepo.failFor["bad-1"] = errors.New("write failed")
	notificationRepo.failFor["bad-2"] = errors.New("write failed")
	svc := NewNotificationService(notificationRepo, newFakePusher())

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}, DisplayName: "Marie"}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author", Title: "Quiche"}
	followerIDs := []string{"ok-1", "bad-1", "ok-2", "bad-2", "ok-3"}

	report, err := svc.NotifyRecipePublished(nil, author, recipe, followerIDs)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodePartialFanout, appErr.Code)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Delivered)
	assert.Equal(t, 2, report.Failed)

	// The successful writes survive the partial failure.
	for _, id := range []string{"ok-1", "ok-2", "ok-3"} {
		assert.Len(t, notificationRepo.forUser(id), 1)
	}
	assert.Empty(t, notificationRepo.forUser("bad-1"))
}

func TestNotifyRecipeComment_SkipsSelfComment(t *testing.T) {
	t.Parallel()

	notificationRepo := newFakeNotificationRepo()
	svc := NewNotificationService(notificationRepo, nil)

	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author", Title: "Flan"}
	author := &models.User{BaseModel: models.BaseModel{ID: "author"}, DisplayName: "Marie"}

	require.NoError(t, svc.NotifyRecipeComment(nil, recipe, author))
	assert.Empty(t, notificationRepo.forUser("author"))

	commenter := &models.User{BaseModel: models.BaseModel{ID: "paul"}, DisplayName: "Paul"}
	require.NoError(t, svc.NotifyRecipeComment(nil, recipe, commenter))

	notifications := notificationRepo.forUser("author")
	require.Len(t, notifications, 1)
	assert.Equal(t, "Paul a commenté votre recette : Flan", notifications[0].Message)
}

func TestMarkAsRead_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	notificationRepo := newFakeNotificationRepo()
	svc := NewNotificationService(notificationRepo, nil)

	notification := &models.Notification{UserID: "alice", Type: repositories.NotificationTypeNewFollower, Message: "x"}
	require.NoError(t, notificationRepo.CreateNotification(nil, notification))

	err := svc.MarkAsRead(nil, "bob", notification.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientPermissions))

	require.NoError(t, svc.MarkAsRead(nil, "alice", notification.ID))
	// Marking twice stays a no-op.
	require.NoError(t, svc.MarkAsRead(nil, "alice", notification.ID))

	count, err := svc.GetUnreadCount(nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestGetUserNotifications_UnreadFilterAndCount(t *testing.T) {
	t.Parallel()

	notificationRepo := newFakeNotificationRepo()
	svc := NewNotificationService(notificationRepo, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, notificationRepo.CreateNotification(nil, &models.Notification{
			UserID: "alice", Type: repositories.NotificationTypeNewRecipe, Message: fmt.Sprintf("n%d", i),
		}))
	}
	read := &models.Notification{UserID: "alice", Type: repositories.NotificationTypeNewFollower, Message: "seen"}
	require.NoError(t, notificationRepo.CreateNotification(nil, read))
	require.NoError(t, notificationRepo.MarkAsRead(nil, read.ID))

	resp, err := svc.GetUserNotifications(nil, "alice", dto.NotificationCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.Total)
	assert.Equal(t, int64(3), resp.UnreadCount)

	unread, err := svc.GetUserNotifications(nil, "alice", dto.NotificationCriteria{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread.Total)

	byType, err := svc.GetUserNotifications(nil, "alice", dto.NotificationCriteria{Type: repositories.NotificationTypeNewFollower})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byType.Total)
}

func TestDeleteNotification_OwnerOnly(t *testing.T) {
	t.Parallel()

	notificationRepo := newFakeNotificationRepo()
	svc := NewNotificationService(notificationRepo, nil)

	notification := &models.Notification{UserID: "alice", Type: repositories.NotificationTypeNewRecipe, Message: "x"}
	require.NoError(t, notificationRepo.CreateNotification(nil, notification))

	err := svc.DeleteNotification(nil, "bob", notification.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientPermissions))

	require.NoError(t, svc.DeleteNotification(nil, "alice", notification.ID))
	assert.Empty(t, notificationRepo.forUser("alice"))
}
