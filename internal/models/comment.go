package models

type Comment struct {
	BaseModel
	RecipeID string  `gorm:"not null;index"`
	UserID   string  `gorm:"not null;index"`
	Content  string  `gorm:"not null"`
	ParentID *string `gorm:"index"` // nil for top-level comments
	IsEdited bool    `gorm:"default:false"`

	// Relations
	User   User     `gorm:"foreignKey:UserID"`
	Parent *Comment `gorm:"foreignKey:ParentID"`
}
