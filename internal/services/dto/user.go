package dto

import "time"

// ======================
// Request DTOs
// ======================

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=2,max=50"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=100"`
}

type UpdateSettingsRequest struct {
	NotifyNewRecipes      *bool `json:"notify_new_recipes,omitempty"`
	NotifyComments        *bool `json:"notify_comments,omitempty"`
	ProfilePublic         *bool `json:"profile_public,omitempty"`
	RecipesPrivateDefault *bool `json:"recipes_private_default,omitempty"`
}

// ======================
// Response DTOs
// ======================

type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email,omitempty"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      string    `json:"avatar_url"`
	Bio            string    `json:"bio"`
	Phone          string    `json:"phone,omitempty"`
	Location       string    `json:"location"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	IsFollowed     bool      `json:"is_followed"` // by the requesting user
	CreatedAt      time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

type FollowListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int             `json:"total"`
}

type SettingsResponse struct {
	NotifyNewRecipes      bool `json:"notify_new_recipes"`
	NotifyComments        bool `json:"notify_comments"`
	ProfilePublic         bool `json:"profile_public"`
	RecipesPrivateDefault bool `json:"recipes_private_default"`
}
