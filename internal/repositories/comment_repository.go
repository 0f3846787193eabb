package repositories

import (
	"errors"

	"recipebook_backend/internal/models"

	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	CreateComment(db *gorm.DB, comment *models.Comment) error
	FindCommentByID(db *gorm.DB, id string) (*models.Comment, error)
	FindCommentsByRecipe(db *gorm.DB, recipeID string) ([]models.Comment, error)
	UpdateComment(db *gorm.DB, commentID, content string) error
	DeleteComment(db *gorm.DB, id string) error
	DeleteCommentsByRecipe(db *gorm.DB, recipeID string) error
	CountCommentsByRecipe(db *gorm.DB, recipeID string) (int64, error)
}

type CommentRepositoryImpl struct{}

func NewCommentRepository() CommentRepository {
	return &CommentRepositoryImpl{}
}

func (r *CommentRepositoryImpl) CreateComment(db *gorm.DB, comment *models.Comment) error {
	return db.Create(comment).Error
}

func (r *CommentRepositoryImpl) FindCommentByID(db *gorm.DB, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := db.Preload("User").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// FindCommentsByRecipe returns all comments of a recipe, newest first.
// Thread assembly (parent/child) is done by the service layer.
func (r *CommentRepositoryImpl) FindCommentsByRecipe(db *gorm.DB, recipeID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.Preload("User").
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepositoryImpl) UpdateComment(db *gorm.DB, commentID, content string) error {
	result := db.Model(&models.Comment{}).Where("id = ?", commentID).
		Updates(map[string]interface{}{
			"content":   content,
			"is_edited": true,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepositoryImpl) DeleteComment(db *gorm.DB, id string) error {
	result := db.Delete(&models.Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepositoryImpl) DeleteCommentsByRecipe(db *gorm.DB, recipeID string) error {
	return db.Delete(&models.Comment{}, "recipe_id = ?", recipeID).Error
}

func (r *CommentRepositoryImpl) CountCommentsByRecipe(db *gorm.DB, recipeID string) (int64, error) {
	var count int64
	err := db.Model(&models.Comment{}).Where("recipe_id = ?", recipeID).Count(&count).Error
	return count, err
}
