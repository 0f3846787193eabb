package services

import (
	"errors"
	"math"

	"recipebook_backend/internal/models"
	"recipebook_backend/internal/repositories"
	chatrepo "recipebook_backend/internal/repositories/chat"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AdminService interface {
	GetDashboardStats(db *gorm.DB) (*dto.AdminDashboardStats, error)
	ListUsers(db *gorm.DB, page, pageSize int) (*dto.UserListResponse, error)
	SetUserRole(db *gorm.DB, actorID, userID string, role models.UserRole) error
	DeleteUser(db *gorm.DB, actorID, userID string) error
	ListSupportConversations(db *gorm.DB, status models.ConversationStatus) (*dto.ConversationListResponse, error)
}

type adminService struct {
	userRepo         repositories.UserRepository
	recipeRepo       repositories.RecipeRepository
	notificationRepo repositories.NotificationRepository
	conversationRepo chatrepo.ConversationRepository
}

func NewAdminService(
	userRepo repositories.UserRepository,
	recipeRepo repositories.RecipeRepository,
	notificationRepo repositories.NotificationRepository,
	conversationRepo chatrepo.ConversationRepository,
) AdminService {
	return &adminService{
		userRepo:         userRepo,
		recipeRepo:       recipeRepo,
		notificationRepo: notificationRepo,
		conversationRepo: conversationRepo,
	}
}

func (s *adminService) GetDashboardStats(db *gorm.DB) (*dto.AdminDashboardStats, error) {
	stats := &dto.AdminDashboardStats{}

	var err error
	if stats.TotalUsers, err = s.userRepo.CountUsers(db); err != nil {
		return nil, apperrors.InternalError("failed to count users").WithError(err)
	}
	if stats.TotalRecipes, err = s.recipeRepo.CountRecipes(db); err != nil {
		return nil, apperrors.InternalError("failed to count recipes").WithError(err)
	}
	if stats.TotalConversations, err = s.conversationRepo.CountConversations(db); err != nil {
		return nil, apperrors.InternalError("failed to count conversations").WithError(err)
	}
	if stats.UnreadNotifications, err = s.notificationRepo.CountUnreadAll(db); err != nil {
		return nil, apperrors.InternalError("failed to count notifications").WithError(err)
	}

	open, err := s.conversationRepo.FindByStatus(db, models.ConversationStatusOpen)
	if err != nil {
		return nil, apperrors.InternalError("failed to load support tickets").WithError(err)
	}
	for i := range open {
		if open[i].Type == models.ConversationTypeSupport {
			stats.OpenSupportTickets++
		}
	}
	return stats, nil
}

func (s *adminService) ListUsers(db *gorm.DB, page, pageSize int) (*dto.UserListResponse, error) {
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
		// Admins see email regardless of profile privacy.
		items = append(items, toUserResponse(&users[i], true))
	}
	return &dto.UserListResponse{
		Users:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func (s *adminService) SetUserRole(db *gorm.DB, actorID, userID string, role models.UserRole) error {
	if actorID == userID {
		return apperrors.ErrInvalidOperation("admin", "cannot change your own role")
	}
	switch role {
	case models.UserRoleUser, models.UserRoleAdmin:
	default:
		return apperrors.ErrInvalidOperation("admin", "unknown role")
	}
	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError("failed to load user").WithError(err)
	}
	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"role": role}); err != nil {
		return apperrors.InternalError("failed to update role").WithError(err)
	}
	return nil
}

// DeleteUser removes the account and its recipes. Comments and
// conversations are kept for the other participants.
func (s *adminService) DeleteUser(db *gorm.DB, actorID, userID string) error {
	if actorID == userID {
		return apperrors.ErrInvalidOperation("admin", "cannot delete your own account")
	}
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError("failed to load user").WithError(err)
	}

	recipes, err := s.recipeRepo.FindRecipesByAuthor(db, user.ID)
	if err != nil {
		return apperrors.InternalError("failed to load user recipes").WithError(err)
	}
	for i := range recipes {
		if err := s.recipeRepo.DeleteRecipe(db, recipes[i].ID); err != nil {
			return apperrors.InternalError("failed to delete user recipes").WithError(err)
		}
	}

	if err := s.userRepo.DeleteUser(db, userID); err != nil {
		return apperrors.InternalError("failed to delete user").WithError(err)
	}
	return nil
}

func (s *adminService) ListSupportConversations(db *gorm.DB, status models.ConversationStatus) (*dto.ConversationListResponse, error) {
	conversations, err := s.conversationRepo.FindByStatus(db, status)
	if err != nil {
		return nil, apperrors.InternalError("failed to list support conversations").WithError(err)
	}

	items := make([]*dto.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		c := &conversations[i]
		if c.Type != models.ConversationTypeSupport {
			continue
		}
		items = append(items, &dto.ConversationResponse{
			ID:            c.ID,
			Type:          string(c.Type),
			Status:        string(c.Status),
			Subject:       c.Subject,
			Topic:         string(c.Topic),
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
			CreatedAt:     c.CreatedAt,
		})
	}
	return &dto.ConversationListResponse{Conversations: items, Total: len(items)}, nil
}
