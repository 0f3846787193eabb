package models

import "time"

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);default:'user'"`
	DisplayName  string   `gorm:"not null"`
	AvatarURL    string
	Bio          string
	Phone        string
	Location     string

	// Denormalized follow counters, kept consistent with the follows table
	// inside the follow/unfollow transaction. The reconcile worker repairs
	// drift.
	FollowersCount int `gorm:"default:0"`
	FollowingCount int `gorm:"default:0"`

	// Notification preferences
	NotifyNewRecipes bool `gorm:"default:true"`
	NotifyComments   bool `gorm:"default:true"`

	// Privacy settings
	ProfilePublic         bool `gorm:"default:true"`
	RecipesPrivateDefault bool `gorm:"default:false"`

	ResetToken    string
	ResetTokenExp *time.Time

	// Relations
	Recipes       []Recipe       `gorm:"foreignKey:AuthorID"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

// Follow is one edge of the follow graph. A single row represents both
// directions of the relation: FollowerID follows FolloweeID, and FolloweeID
// is followed by FollowerID. Symmetry holds by construction.
type Follow struct {
	BaseModel
	FollowerID string `gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	FolloweeID string `gorm:"not null;uniqueIndex:idx_follow_pair;index"`

	Follower User `gorm:"foreignKey:FollowerID"`
	Followee User `gorm:"foreignKey:FolloweeID"`
}
