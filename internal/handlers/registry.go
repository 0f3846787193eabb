package handlers

// AppHandlers holds every handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	RecipeHandler       *RecipeHandler
	CommentHandler      *CommentHandler
	NotificationHandler *NotificationHandler
	ChatHandler         *ChatHandler
	AdminHandler        *AdminHandler
	UploadHandler       *UploadHandler
}
