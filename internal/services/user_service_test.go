package services

import (
	"testing"

	"recipebook_backend/internal/models"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceForTest(users ...*models.User) (UserService, *fakeUserRepo, *fakeFollowRepo, *fakeNotificationRepo) {
	userRepo := newFakeUserRepo(users...)
	followRepo := newFakeFollowRepo(userRepo)
	notificationRepo := newFakeNotificationRepo()
	notificationService := NewNotificationService(notificationRepo, newFakePusher())
	svc := NewUserService(userRepo, followRepo, notificationService)
	return svc, userRepo, followRepo, notificationRepo
}

func TestFollow_CreatesEdgeAndBumpsBothCounters(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}, DisplayName: "Alice", ProfilePublic: true}
	bob := &models.User{BaseModel: models.BaseModel{ID: "bob"}, DisplayName: "Bob", ProfilePublic: true}
	svc, userRepo, followRepo, _ := newUserServiceForTest(alice, bob)

	require.NoError(t, svc.Follow(nil, "alice", "bob"))

	exists, err := followRepo.FollowExists(nil, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, exists)

	// Reverse direction stays independent.
	reverse, err := followRepo.FollowExists(nil, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, reverse)

	storedAlice, err := userRepo.FindByID(nil, "alice")
	require.NoError(t, err)
	storedBob, err := userRepo.FindByID(nil, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, storedAlice.FollowingCount)
	assert.Equal(t, 0, storedAlice.FollowersCount)
	assert.Equal(t, 1, storedBob.FollowersCount)
	assert.Equal(t, 0, storedBob.FollowingCount)
}

func TestFollow_NotifiesFolloweeOnce(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}, DisplayName: "Alice"}
	bob := &models.User{BaseModel: models.BaseModel{ID: "bob"}, DisplayName: "Bob"}
	svc, userRepo, _, notificationRepo := newUserServiceForTest(alice, bob)

	require.NoError(t, svc.Follow(nil, "alice", "bob"))
	// Repeat follow is a no-op and must not notify again.
	require.NoError(t, svc.Follow(nil, "alice", "bob"))

	notifications := notificationRepo.forUser("bob")
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "Alice")
	assert.Equal(t, "/profile/alice", notifications[0].LinkTo)

	storedBob, err := userRepo.FindByID(nil, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, storedBob.FollowersCount)
}

func TestFollow_RejectsSelf(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	svc, _, _, _ := newUserServiceForTest(alice)

	err := svc.Follow(nil, "alice", "alice")
	assert.True(t, apperrors.Is(err, apperrors.ErrSelfFollow))
	err = svc.Unfollow(nil, "alice", "alice")
	assert.True(t, apperrors.Is(err, apperrors.ErrSelfFollow))
}

func TestFollow_UnknownUsersRejected(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	svc, _, _, _ := newUserServiceForTest(alice)

	var appErr *apperrors.AppError
	err := svc.Follow(nil, "alice", "ghost")
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)

	err = svc.Follow(nil, "ghost", "alice")
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestUnfollow_RoundTripRestoresCounters(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	bob := &models.User{BaseModel: models.BaseModel{ID: "bob"}}
	svc, userRepo, followRepo, _ := newUserServiceForTest(alice, bob)

	require.NoError(t, svc.Follow(nil, "alice", "bob"))
	require.NoError(t, svc.Unfollow(nil, "alice", "bob"))

	exists, err := followRepo.FollowExists(nil, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	storedAlice, _ := userRepo.FindByID(nil, "alice")
	storedBob, _ := userRepo.FindByID(nil, "bob")
	assert.Equal(t, 0, storedAlice.FollowingCount)
	assert.Equal(t, 0, storedBob.FollowersCount)
}

func TestUnfollow_WithoutEdgeIsNoop(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}}
	bob := &models.User{BaseModel: models.BaseModel{ID: "bob"}}
	svc, userRepo, _, _ := newUserServiceForTest(alice, bob)

	require.NoError(t, svc.Unfollow(nil, "alice", "bob"))

	storedBob, _ := userRepo.FindByID(nil, "bob")
	assert.Equal(t, 0, storedBob.FollowersCount)
}

func TestGetProfile_PrivateProfileHiddenFromOthers(t *testing.T) {
	t.Parallel()

	hermit := &models.User{BaseModel: models.BaseModel{ID: "hermit"}, DisplayName: "Hermit", ProfilePublic: false}
	viewer := &models.User{BaseModel: models.BaseModel{ID: "viewer"}, ProfilePublic: true}
	svc, _, _, _ := newUserServiceForTest(hermit, viewer)

	_, err := svc.GetProfile(nil, "viewer", "hermit")
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)

	// The owner still sees their own profile.
	resp, err := svc.GetProfile(nil, "hermit", "hermit")
	require.NoError(t, err)
	assert.Equal(t, "Hermit", resp.DisplayName)
}

func TestGetProfile_ContactDetailsOwnerOnly(t *testing.T) {
	t.Parallel()

	alice := &models.User{
		BaseModel:     models.BaseModel{ID: "alice"},
		Email:         "alice@example.com",
		Phone:         "0600000000",
		ProfilePublic: true,
	}
	viewer := &models.User{BaseModel: models.BaseModel{ID: "viewer"}, ProfilePublic: true}
	svc, _, _, _ := newUserServiceForTest(alice, viewer)

	own, err := svc.GetProfile(nil, "alice", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", own.Email)

	public, err := svc.GetProfile(nil, "viewer", "alice")
	require.NoError(t, err)
	assert.Empty(t, public.Email)
	assert.Empty(t, public.Phone)
}

func TestUpdateSettings_TogglesNotificationPreferences(t *testing.T) {
	t.Parallel()

	alice := &models.User{BaseModel: models.BaseModel{ID: "alice"}, NotifyNewRecipes: true, NotifyComments: true}
	svc, userRepo, _, _ := newUserServiceForTest(alice)

	off := false
	resp, err := svc.UpdateSettings(nil, "alice", &dto.UpdateSettingsRequest{NotifyNewRecipes: &off})
	require.NoError(t, err)
	assert.False(t, resp.NotifyNewRecipes)
	assert.True(t, resp.NotifyComments)

	stored, _ := userRepo.FindByID(nil, "alice")
	assert.False(t, stored.NotifyNewRecipes)
}
