package models

import "time"

type Notification struct {
	BaseModel
	UserID  string `gorm:"not null;index"`
	Type    string `gorm:"not null"` // "recipe_new", "recipe_comment", "new_follower"
	Message string `gorm:"not null"`
	LinkTo  string
	IsRead  bool `gorm:"default:false"`
	ReadAt  *time.Time
}
