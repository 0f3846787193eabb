package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipebook_backend/database"
	"recipebook_backend/internal/config"
	"recipebook_backend/internal/email"
	"recipebook_backend/internal/handlers"
	"recipebook_backend/internal/logger"
	"recipebook_backend/internal/middleware"
	"recipebook_backend/internal/models"
	"recipebook_backend/internal/repositories"
	chatrepo "recipebook_backend/internal/repositories/chat"
	"recipebook_backend/internal/services"
	"recipebook_backend/internal/storage"
	"recipebook_backend/internal/validator"
	"recipebook_backend/internal/workers"
	"recipebook_backend/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startWorkers(ctx, cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	wsManager := ws.NewManager()
	go wsManager.Run()
	wsHandler := ws.NewHandler(wsManager)

	serviceContainer := initializeServices(cfg, storageInstance, wsManager)
	appHandlers := initializeHandlers(serviceContainer, storageInstance)

	ginRouter := initializeGinRouter(gormDB)

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "ok",
			"ws_clients": wsManager.ClientCount(),
		})
	})

	api := ginRouter.Group("/api/v1")
	appHandlers.AuthHandler.RegisterRoutes(api)
	appHandlers.UserHandler.RegisterRoutes(api)
	appHandlers.RecipeHandler.RegisterRoutes(api)
	appHandlers.CommentHandler.RegisterRoutes(api)
	appHandlers.NotificationHandler.RegisterRoutes(api)
	appHandlers.ChatHandler.RegisterRoutes(api)
	appHandlers.AdminHandler.RegisterRoutes(api)
	appHandlers.UploadHandler.RegisterRoutes(api)
	wsHandler.RegisterRoutes(api)

	return ginRouter
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage, pusher services.RealtimePusher) *services.ServiceContainer {
	var emailService email.Provider
	if cfg.Email.SMTPHost != "" {
		smtp, err := email.NewSMTPProvider(cfg)
		if err != nil {
			logger.Fatal("Failed to initialize SMTP provider", "error", err)
		}
		emailService = smtp
	} else {
		logger.Warn("SMTP is not configured, emails will be dropped")
		emailService = email.NoopProvider{}
	}

	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	followRepo := repositories.NewFollowRepository()
	recipeRepo := repositories.NewRecipeRepository()
	commentRepo := repositories.NewCommentRepository()
	notificationRepo := repositories.NewNotificationRepository()
	conversationRepo := chatrepo.NewConversationRepository()
	messageRepo := chatrepo.NewMessageRepository()

	notificationService := services.NewNotificationService(notificationRepo, pusher)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, emailService)
	userService := services.NewUserService(userRepo, followRepo, notificationService)
	recipeService := services.NewRecipeService(recipeRepo, userRepo, followRepo, commentRepo, notificationService)
	commentService := services.NewCommentService(commentRepo, recipeRepo, userRepo, notificationService)
	chatService := services.NewChatService(conversationRepo, messageRepo, userRepo, pusher)
	adminService := services.NewAdminService(userRepo, recipeRepo, notificationRepo, conversationRepo)
	uploadService := services.NewUploadService(storageInstance, cfg)

	return &services.ServiceContainer{
		AuthService:         authService,
		UserService:         userService,
		RecipeService:       recipeService,
		CommentService:      commentService,
		NotificationService: notificationService,
		ChatService:         chatService,
		AdminService:        adminService,
		UploadService:       uploadService,
		EmailService:        emailService,
	}
}

func initializeHandlers(services *services.ServiceContainer, storageInstance storage.Storage) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:         handlers.NewUserHandler(baseHandler, services.UserService),
		RecipeHandler:       handlers.NewRecipeHandler(baseHandler, services.RecipeService),
		CommentHandler:      handlers.NewCommentHandler(baseHandler, services.CommentService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
		ChatHandler:         handlers.NewChatHandler(baseHandler, services.ChatService),
		AdminHandler:        handlers.NewAdminHandler(baseHandler, services.AdminService),
		UploadHandler:       handlers.NewUploadHandler(baseHandler, services.UploadService, storageInstance),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func startWorkers(ctx context.Context, cfg *config.Config, db *gorm.DB) {
	followRepo := repositories.NewFollowRepository()
	notificationRepo := repositories.NewNotificationRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()

	reconcileInterval := time.Duration(cfg.Workers.FollowReconcileInterval) * time.Minute
	workers.NewFollowReconcileWorker(db, followRepo, reconcileInterval).Start(ctx)

	retention := time.Duration(cfg.Workers.NotificationRetentionDays) * 24 * time.Hour
	workers.NewNotificationCleanupWorker(db, notificationRepo, refreshTokenRepo, retention).Start(ctx)

	logger.Info("Background workers started")
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Role:         models.UserRoleAdmin,
		DisplayName:  "Administrator",
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Successfully created first admin user", "email", adminEmail)
	return nil
}
