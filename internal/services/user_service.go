package services

import (
	"errors"
	"math"

	"recipebook_backend/internal/logger"
	"recipebook_backend/internal/models"
	"recipebook_backend/internal/repositories"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetProfile(db *gorm.DB, viewerID, userID string) (*dto.UserResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	GetSettings(db *gorm.DB, userID string) (*dto.SettingsResponse, error)
	UpdateSettings(db *gorm.DB, userID string, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	ListUsers(db *gorm.DB, viewerID string, page, pageSize int) (*dto.UserListResponse, error)

	// Follow and Unfollow mutate the follow graph. Both are idempotent;
	// following yourself is rejected.
	Follow(db *gorm.DB, followerID, followeeID string) error
	Unfollow(db *gorm.DB, followerID, followeeID string) error
	ListFollowers(db *gorm.DB, viewerID, userID string) (*dto.FollowListResponse, error)
	ListFollowing(db *gorm.DB, viewerID, userID string) (*dto.FollowListResponse, error)
}

type userService struct {
	userRepo            repositories.UserRepository
	followRepo          repositories.FollowRepository
	notificationService NotificationService
}

func NewUserService(
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	notificationService NotificationService,
) UserService {
	return &userService{
		userRepo:            userRepo,
		followRepo:          followRepo,
		notificationService: notificationService,
	}
}

func (s *userService) GetProfile(db *gorm.DB, viewerID, userID string) (*dto.UserResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	if !user.ProfilePublic && viewerID != userID {
		return nil, apperrors.ErrNotFound(repositories.ErrUserNotFound)
	}

	resp := toUserResponse(user, viewerID == userID)
	if viewerID != "" && viewerID != userID {
		if followed, err := s.followRepo.FollowExists(db, viewerID, userID); err == nil {
			resp.IsFollowed = followed
		}
	}
	return resp, nil
}

func (s *userService) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.DisplayName != nil {
		fields["display_name"] = *req.DisplayName
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(db, userID, fields); err != nil {
			return nil, apperrors.InternalError("failed to update profile").WithError(err)
		}
		if user, err = s.findUser(db, userID); err != nil {
			return nil, err
		}
	}
	return toUserResponse(user, true), nil
}

func (s *userService) GetSettings(db *gorm.DB, userID string) (*dto.SettingsResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(user), nil
}

func (s *userService) UpdateSettings(db *gorm.DB, userID string, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.NotifyNewRecipes != nil {
		fields["notify_new_recipes"] = *req.NotifyNewRecipes
	}
	if req.NotifyComments != nil {
		fields["notify_comments"] = *req.NotifyComments
	}
	if req.ProfilePublic != nil {
		fields["profile_public"] = *req.ProfilePublic
	}
	if req.RecipesPrivateDefault != nil {
		fields["recipes_private_default"] = *req.RecipesPrivateDefault
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(db, userID, fields); err != nil {
			return nil, apperrors.InternalError("failed to update settings").WithError(err)
		}
		if user, err = s.findUser(db, userID); err != nil {
			return nil, err
		}
	}
	return toSettingsResponse(user), nil
}

func (s *userService) ListUsers(db *gorm.DB, viewerID string, page, pageSize int) (*dto.UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	users, total, err := s.userRepo.FindAllUsers(db, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError("failed to list users").WithError(err)
	}

	items := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		if !users[i].ProfilePublic && users[i].ID != viewerID {
			continue
		}
		items = append(items, toUserResponse(&users[i], false))
	}
	return &dto.UserListResponse{
		Users:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func (s *userService) Follow(db *gorm.DB, followerID, followeeID string) error {
	if followerID == followeeID {
		return apperrors.ErrSelfFollow
	}

	follower, err := s.findUser(db, followerID)
	if err != nil {
		return err
	}
	if _, err := s.findUser(db, followeeID); err != nil {
		return err
	}

	created, err := s.followRepo.Follow(db, followerID, followeeID)
	if err != nil {
		return apperrors.InternalError("failed to follow user").WithError(err)
	}
	if !created {
		// Already following: nothing changed, nobody gets notified twice.
		return nil
	}

	if err := s.notificationService.NotifyNewFollower(db, followeeID, follower); err != nil {
		logger.GetLogger().Warn("failed to notify about new follower",
			"follower_id", followerID, "followee_id", followeeID, "error", err)
	}
	return nil
}

func (s *userService) Unfollow(db *gorm.DB, followerID, followeeID string) error {
	if followerID == followeeID {
		return apperrors.ErrSelfFollow
	}
	if _, err := s.findUser(db, followeeID); err != nil {
		return err
	}

	if _, err := s.followRepo.Unfollow(db, followerID, followeeID); err != nil {
		return apperrors.InternalError("failed to unfollow user").WithError(err)
	}
	return nil
}

func (s *userService) ListFollowers(db *gorm.DB, viewerID, userID string) (*dto.FollowListResponse, error) {
	ids, err := s.followRepo.FindFollowerIDs(db, userID)
	if err != nil {
		return nil, apperrors.InternalError("failed to list followers").WithError(err)
	}
	return s.toFollowList(db, viewerID, ids)
}

func (s *userService) ListFollowing(db *gorm.DB, viewerID, userID string) (*dto.FollowListResponse, error) {
	ids, err := s.followRepo.FindFollowingIDs(db, userID)
	if err != nil {
		return nil, apperrors.InternalError("failed to list following").WithError(err)
	}
	return s.toFollowList(db, viewerID, ids)
}

func (s *userService) toFollowList(db *gorm.DB, viewerID string, ids []string) (*dto.FollowListResponse, error) {
	users, err := s.userRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError("failed to load users").WithError(err)
	}
	items := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		resp := toUserResponse(&users[i], false)
		if viewerID != "" && viewerID != users[i].ID {
			if followed, err := s.followRepo.FollowExists(db, viewerID, users[i].ID); err == nil {
				resp.IsFollowed = followed
			}
		}
		items = append(items, resp)
	}
	return &dto.FollowListResponse{Users: items, Total: len(items)}, nil
}

func (s *userService) findUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError("failed to load user").WithError(err)
	}
	return user, nil
}

// toUserResponse maps a user row to its public shape. Email and phone are
// only included for the owner.
func toUserResponse(user *models.User, owner bool) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:             user.ID,
		DisplayName:    user.DisplayName,
		AvatarURL:      user.AvatarURL,
		Bio:            user.Bio,
		Location:       user.Location,
		FollowersCount: user.FollowersCount,
		FollowingCount: user.FollowingCount,
		CreatedAt:      user.CreatedAt,
	}
	if owner {
		resp.Email = user.Email
		resp.Phone = user.Phone
	}
	return resp
}

func toSettingsResponse(user *models.User) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		NotifyNewRecipes:      user.NotifyNewRecipes,
		NotifyComments:        user.NotifyComments,
		ProfilePublic:         user.ProfilePublic,
		RecipesPrivateDefault: user.RecipesPrivateDefault,
	}
}
