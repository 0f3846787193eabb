package models

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type RecipeCategory string

const (
	RecipeCategorySoup    RecipeCategory = "soup"
	RecipeCategoryStarter RecipeCategory = "starter"
	RecipeCategoryMain    RecipeCategory = "main"
	RecipeCategoryDessert RecipeCategory = "dessert"
	RecipeCategoryOther   RecipeCategory = "other"
)

type ConversationType string

const (
	ConversationTypeDirect  ConversationType = "direct"
	ConversationTypeSupport ConversationType = "support"
)

type ConversationStatus string

const (
	ConversationStatusOpen     ConversationStatus = "open"
	ConversationStatusClosed   ConversationStatus = "closed"
	ConversationStatusArchived ConversationStatus = "archived"
)

type SupportTopic string

const (
	SupportTopicBug         SupportTopic = "bug"
	SupportTopicImprovement SupportTopic = "improvement"
	SupportTopicOther       SupportTopic = "other"
)
