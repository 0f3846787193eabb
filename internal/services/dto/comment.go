package dto

import "time"

// ======================
// Request DTOs
// ======================

type CreateCommentRequest struct {
	Content  string  `json:"content" validate:"required,min=1,max=2000"`
	ParentID *string `json:"parent_id,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// ======================
// Response DTOs
// ======================

type CommentResponse struct {
	ID         string    `json:"id"`
	RecipeID   string    `json:"recipe_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar"`
	Content    string    `json:"content"`
	ParentID   *string   `json:"parent_id,omitempty"`
	IsEdited   bool      `json:"is_edited"`
	CreatedAt  time.Time `json:"created_at"`

	Replies []*CommentResponse `json:"replies,omitempty"`
}

type CommentListResponse struct {
	Comments []*CommentResponse `json:"comments"`
	Total    int64              `json:"total"`
}
