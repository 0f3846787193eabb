package services

import (
	"recipebook_backend/internal/email"
)

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	RecipeService       RecipeService
	CommentService      CommentService
	NotificationService NotificationService
	ChatService         ChatService
	AdminService        AdminService
	UploadService       UploadService
	EmailService        email.Provider
}
