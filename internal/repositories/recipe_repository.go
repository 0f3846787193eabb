package repositories

import (
	"errors"

	"recipebook_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrRecipeVersionConflict = errors.New("recipe was modified concurrently")
	ErrAlreadyFavorite       = errors.New("recipe is already a favorite")
	ErrFavoriteNotFound      = errors.New("favorite not found")
)

// Search criteria for recipe listings.
type RecipeCriteria struct {
	Query    string                `form:"q"`
	Category models.RecipeCategory `form:"category"`
	AuthorID string                `form:"author_id"`
	Page     int                   `form:"page" binding:"min=0"`
	PageSize int                   `form:"page_size" binding:"min=0,max=100"`
}

type RecipeRepository interface {
	CreateRecipe(db *gorm.DB, recipe *models.Recipe) error
	FindRecipeByID(db *gorm.DB, id string) (*models.Recipe, error)
	UpdateRecipe(db *gorm.DB, recipeID string, fields map[string]interface{}) error
	DeleteRecipe(db *gorm.DB, id string) error
	FindVisibleRecipes(db *gorm.DB, viewerID string, criteria RecipeCriteria) ([]models.Recipe, int64, error)
	FindRecipesByAuthor(db *gorm.DB, authorID string) ([]models.Recipe, error)
	CountRecipes(db *gorm.DB) (int64, error)

	// Rating: conditional write, succeeds only if no concurrent writer bumped
	// the version since the caller's read.
	UpdateRecipeRating(db *gorm.DB, recipe *models.Recipe, expectedVersion int) error

	// Favorites
	AddFavorite(db *gorm.DB, userID, recipeID string) error
	RemoveFavorite(db *gorm.DB, userID, recipeID string) error
	IsFavorite(db *gorm.DB, userID, recipeID string) (bool, error)
	FindFavoriteRecipeIDs(db *gorm.DB, userID string) ([]string, error)
	FindFavoriteRecipes(db *gorm.DB, userID string) ([]models.Recipe, error)
}

type RecipeRepositoryImpl struct{}

func NewRecipeRepository() RecipeRepository {
	return &RecipeRepositoryImpl{}
}

func (r *RecipeRepositoryImpl) CreateRecipe(db *gorm.DB, recipe *models.Recipe) error {
	return db.Create(recipe).Error
}

func (r *RecipeRepositoryImpl) FindRecipeByID(db *gorm.DB, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepositoryImpl) UpdateRecipe(db *gorm.DB, recipeID string, fields map[string]interface{}) error {
	result := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func (r *RecipeRepositoryImpl) DeleteRecipe(db *gorm.DB, id string) error {
	result := db.Delete(&models.Recipe{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// FindVisibleRecipes lists public recipes plus the viewer's own private ones,
// filtered by the criteria.
func (r *RecipeRepositoryImpl) FindVisibleRecipes(db *gorm.DB, viewerID string, criteria RecipeCriteria) ([]models.Recipe, int64, error) {
	query := db.Model(&models.Recipe{}).
		Where("is_private = false OR author_id = ?", viewerID)

	if criteria.Query != "" {
		query = query.Where("title ILIKE ?", "%"+criteria.Query+"%")
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.AuthorID != "" {
		query = query.Where("author_id = ?", criteria.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var recipes []models.Recipe
	err := query.Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&recipes).Error
	return recipes, total, err
}

func (r *RecipeRepositoryImpl) FindRecipesByAuthor(db *gorm.DB, authorID string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := db.Where("author_id = ?", authorID).Order("created_at DESC").Find(&recipes).Error
	return recipes, err
}

func (r *RecipeRepositoryImpl) CountRecipes(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Recipe{}).Count(&count).Error
	return count, err
}

// UpdateRecipeRating persists the recomputed rating record, guarded by the
// version read by the caller. RowsAffected == 0 means a concurrent writer won
// and the caller must re-read and retry.
func (r *RecipeRepositoryImpl) UpdateRecipeRating(db *gorm.DB, recipe *models.Recipe, expectedVersion int) error {
	result := db.Model(&models.Recipe{}).
		Where("id = ? AND version = ?", recipe.ID, expectedVersion).
		Updates(map[string]interface{}{
			"rating":        recipe.Rating,
			"total_ratings": recipe.TotalRatings,
			"user_ratings":  recipe.UserRatings,
			"version":       expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecipeVersionConflict
	}
	return nil
}

// ---------------- Favorites ----------------

func (r *RecipeRepositoryImpl) AddFavorite(db *gorm.DB, userID, recipeID string) error {
	exists, err := r.IsFavorite(db, userID, recipeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFavorite
	}
	return db.Create(&models.Favorite{UserID: userID, RecipeID: recipeID}).Error
}

func (r *RecipeRepositoryImpl) RemoveFavorite(db *gorm.DB, userID, recipeID string) error {
	result := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func (r *RecipeRepositoryImpl) IsFavorite(db *gorm.DB, userID, recipeID string) (bool, error) {
	var count int64
	err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (r *RecipeRepositoryImpl) FindFavoriteRecipeIDs(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error
	return ids, err
}

func (r *RecipeRepositoryImpl) FindFavoriteRecipes(db *gorm.DB, userID string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := db.Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&recipes).Error
	return recipes, err
}
