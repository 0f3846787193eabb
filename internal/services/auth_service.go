package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"recipebook_backend/internal/auth"
	"recipebook_backend/internal/config"
	"recipebook_backend/internal/email"
	"recipebook_backend/internal/logger"
	"recipebook_backend/internal/models"
	"recipebook_backend/internal/repositories"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	refreshTokenTTL = 30 * 24 * time.Hour
	resetTokenTTL   = time.Hour
)

// defaultAvatarURL generates a deterministic placeholder avatar for new
// accounts.
func defaultAvatarURL(seed string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", seed)
}

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(db *gorm.DB, req *dto.RefreshRequest) (*dto.LoginResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error
	RequestPasswordReset(db *gorm.DB, req *dto.RequestPasswordResetRequest) error
	ResetPassword(db *gorm.DB, req *dto.ResetPasswordRequest) error
}

type authService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	mailer           email.Provider
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	mailer email.Provider,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		mailer:           mailer,
	}
}

func (s *authService) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError("failed to hash password").WithError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		DisplayName:  req.DisplayName,
	}
	if err := s.userRepo.CreateUser(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.InternalError("failed to create user").WithError(err)
	}

	if user.AvatarURL == "" {
		avatar := defaultAvatarURL(user.ID)
		if err := s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{"avatar_url": avatar}); err == nil {
			user.AvatarURL = avatar
		}
	}

	if err := s.mailer.SendWelcome(user.Email, user.DisplayName); err != nil {
		logger.Warn("failed to send welcome email", "user_id", user.ID, "error", err)
	}

	return s.issueTokens(db, user)
}

func (s *authService) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid email or password")
		}
		return nil, apperrors.InternalError("failed to load user").WithError(err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}
	return s.issueTokens(db, user)
}

func (s *authService) Refresh(db *gorm.DB, req *dto.RefreshRequest) (*dto.LoginResponse, error) {
	stored, err := s.refreshTokenRepo.FindByToken(db, req.RefreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid or expired refresh token")
		}
		return nil, apperrors.InternalError("failed to load refresh token").WithError(err)
	}

	user, err := s.userRepo.FindByID(db, stored.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid or expired refresh token")
	}

	// Rotation: the presented token is burned, a new pair is issued.
	if err := s.refreshTokenRepo.Delete(db, req.RefreshToken); err != nil {
		return nil, apperrors.InternalError("failed to rotate refresh token").WithError(err)
	}
	return s.issueTokens(db, user)
}

func (s *authService) Logout(db *gorm.DB, refreshToken string) error {
	err := s.refreshTokenRepo.Delete(db, refreshToken)
	if err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.InternalError("failed to delete refresh token").WithError(err)
	}
	return nil
}

func (s *authService) ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.NewUnauthorizedError("Current password is incorrect")
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError("failed to hash password").WithError(err)
	}
	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return apperrors.InternalError("failed to update password").WithError(err)
	}
	// All sessions are revoked on password change.
	if err := s.refreshTokenRepo.DeleteByUser(db, userID); err != nil {
		return apperrors.InternalError("failed to revoke sessions").WithError(err)
	}
	return nil
}

func (s *authService) RequestPasswordReset(db *gorm.DB, req *dto.RequestPasswordResetRequest) error {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		// Whether the email exists is not disclosed.
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError("failed to load user").WithError(err)
	}

	token, err := randomToken()
	if err != nil {
		return apperrors.InternalError("failed to generate reset token").WithError(err)
	}
	if err := s.userRepo.SetResetToken(db, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return apperrors.InternalError("failed to store reset token").WithError(err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", config.GetConfig().App.BaseURL, token)
	if err := s.mailer.SendPasswordReset(user.Email, user.DisplayName, resetLink); err != nil {
		logger.GetLogger().Error("failed to send password reset email",
			"user_id", user.ID, "error", err)
		return apperrors.InternalError("failed to send password reset email").WithError(err)
	}
	return nil
}

func (s *authService) ResetPassword(db *gorm.DB, req *dto.ResetPasswordRequest) error {
	user, err := s.userRepo.FindByResetToken(db, req.Token)
	if err != nil {
		return apperrors.NewBadRequestError("Invalid or expired reset token")
	}
	if user.ResetTokenExp == nil || time.Now().After(*user.ResetTokenExp) {
		return apperrors.NewBadRequestError("Invalid or expired reset token")
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError("failed to hash password").WithError(err)
	}
	if err := s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		return apperrors.InternalError("failed to update password").WithError(err)
	}
	if err := s.userRepo.ClearResetToken(db, user.ID); err != nil {
		return apperrors.InternalError("failed to clear reset token").WithError(err)
	}
	if err := s.refreshTokenRepo.DeleteByUser(db, user.ID); err != nil {
		return apperrors.InternalError("failed to revoke sessions").WithError(err)
	}
	return nil
}

func (s *authService) issueTokens(db *gorm.DB, user *models.User) (*dto.LoginResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError("failed to generate access token").WithError(err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, apperrors.InternalError("failed to generate refresh token").WithError(err)
	}
	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(db, record); err != nil {
		return nil, apperrors.InternalError("failed to store refresh token").WithError(err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user, true),
	}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
