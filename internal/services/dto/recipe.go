package dto

import "time"

// ======================
// Request DTOs
// ======================

type CreateRecipeRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=150"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	PrepTime    int      `json:"prep_time" validate:"omitempty,min=0"`
	CookTime    int      `json:"cook_time" validate:"omitempty,min=0"`
	Servings    int      `json:"servings" validate:"omitempty,min=1"`
	Ingredients []string `json:"ingredients" validate:"required,min=1,dive,required"`
	Steps       []string `json:"steps" validate:"required,min=1,dive,required"`
	Category    string   `json:"category" validate:"required,is-recipe-category"`
	IsPrivate   *bool    `json:"is_private,omitempty"`
}

type UpdateRecipeRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=2,max=150"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    *string   `json:"image_url,omitempty" validate:"omitempty,url"`
	PrepTime    *int      `json:"prep_time,omitempty" validate:"omitempty,min=0"`
	CookTime    *int      `json:"cook_time,omitempty" validate:"omitempty,min=0"`
	Servings    *int      `json:"servings,omitempty" validate:"omitempty,min=1"`
	Ingredients *[]string `json:"ingredients,omitempty" validate:"omitempty,min=1,dive,required"`
	Steps       *[]string `json:"steps,omitempty" validate:"omitempty,min=1,dive,required"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,is-recipe-category"`
	IsPrivate   *bool     `json:"is_private,omitempty"`
}

type RateRecipeRequest struct {
	Stars int `json:"stars" validate:"required"`
}

// ======================
// Response DTOs
// ======================

type RecipeResponse struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	PrepTime     int       `json:"prep_time"`
	CookTime     int       `json:"cook_time"`
	Servings     int       `json:"servings"`
	Ingredients  []string  `json:"ingredients"`
	Steps        []string  `json:"steps"`
	Category     string    `json:"category"`
	IsPrivate    bool      `json:"is_private"`
	Rating       float64   `json:"rating"`
	TotalRatings int       `json:"total_ratings"`
	UserRating   int       `json:"user_rating"` // requesting user's own stars, 0 if none
	IsFavorite   bool      `json:"is_favorite"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Author *UserResponse `json:"author,omitempty"`
}

type RecipeListResponse struct {
	Recipes    []*RecipeResponse `json:"recipes"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type RatingRecordResponse struct {
	RecipeID     string  `json:"recipe_id"`
	Rating       float64 `json:"rating"`
	TotalRatings int     `json:"total_ratings"`
	UserRating   int     `json:"user_rating"`
}

type FavoriteResponse struct {
	RecipeID   string `json:"recipe_id"`
	IsFavorite bool   `json:"is_favorite"`
}
