package models

import (
	"gorm.io/datatypes"
)

type Recipe struct {
	BaseModel
	AuthorID    string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	ImageURL    string
	PrepTime    int `gorm:"default:0"` // minutes
	CookTime    int `gorm:"default:0"` // minutes
	Servings    int `gorm:"default:1"`

	Ingredients datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Steps       datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	Category  RecipeCategory `gorm:"type:varchar(20);default:'other'"`
	IsPrivate bool           `gorm:"default:false"`

	// Rating record. Invariant: Rating == sum(UserRatings)/TotalRatings when
	// TotalRatings > 0, 0 otherwise; TotalRatings == len(UserRatings).
	Rating       float64           `gorm:"default:0"`
	TotalRatings int               `gorm:"default:0"`
	UserRatings  datatypes.JSONMap `gorm:"type:jsonb"` // userID -> stars (1..5)

	// Version guards read-modify-write rating updates. Bumped by every
	// conditional rating UPDATE; a stale version means a concurrent writer won.
	Version int `gorm:"default:0"`

	// Relations
	Author   User      `gorm:"foreignKey:AuthorID"`
	Comments []Comment `gorm:"foreignKey:RecipeID"`
}

// Favorite marks a recipe saved by a user. Set semantics: the unique pair
// index rejects duplicates.
type Favorite struct {
	BaseModel
	UserID   string `gorm:"not null;uniqueIndex:idx_favorite_pair;index"`
	RecipeID string `gorm:"not null;uniqueIndex:idx_favorite_pair;index"`

	Recipe Recipe `gorm:"foreignKey:RecipeID"`
}
