package dto

// AdminDashboardStats aggregates platform-wide totals for the admin panel.
type AdminDashboardStats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalRecipes        int64 `json:"total_recipes"`
	TotalConversations  int64 `json:"total_conversations"`
	UnreadNotifications int64 `json:"unread_notifications"`
	OpenSupportTickets  int64 `json:"open_support_tickets"`
}
