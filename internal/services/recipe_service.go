package services

import (
	"errors"
	"math"

	"recipebook_backend/internal/logger"
	"recipebook_backend/internal/models"
	"recipebook_backend/internal/repositories"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxRatingAttempts bounds the read-modify-write retry loop when concurrent
// raters collide on the same recipe.
const maxRatingAttempts = 3

type RecipeService interface {
	CreateRecipe(db *gorm.DB, authorID string, req *dto.CreateRecipeRequest) (*dto.RecipeResponse, error)
	GetRecipe(db *gorm.DB, viewerID, recipeID string) (*dto.RecipeResponse, error)
	UpdateRecipe(db *gorm.DB, actorID, recipeID string, req *dto.UpdateRecipeRequest) (*dto.RecipeResponse, error)
	DeleteRecipe(db *gorm.DB, actorID string, actorRole models.UserRole, recipeID string) error
	ListRecipes(db *gorm.DB, viewerID string, criteria repositories.RecipeCriteria) (*dto.RecipeListResponse, error)

	// RateRecipe records or replaces the caller's rating and folds it into
	// the recipe's aggregate incrementally. Stars outside 1..5 are rejected.
	RateRecipe(db *gorm.DB, userID, recipeID string, stars int) (*dto.RatingRecordResponse, error)

	AddFavorite(db *gorm.DB, userID, recipeID string) (*dto.FavoriteResponse, error)
	RemoveFavorite(db *gorm.DB, userID, recipeID string) (*dto.FavoriteResponse, error)
	ListFavorites(db *gorm.DB, userID string) (*dto.RecipeListResponse, error)
}

type recipeService struct {
	recipeRepo          repositories.RecipeRepository
	userRepo            repositories.UserRepository
	followRepo          repositories.FollowRepository
	commentRepo         repositories.CommentRepository
	notificationService NotificationService
}

func NewRecipeService(
	recipeRepo repositories.RecipeRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	commentRepo repositories.CommentRepository,
	notificationService NotificationService,
) RecipeService {
	return &recipeService{
		recipeRepo:          recipeRepo,
		userRepo:            userRepo,
		followRepo:          followRepo,
		commentRepo:         commentRepo,
		notificationService: notificationService,
	}
}

func (s *recipeService) CreateRecipe(db *gorm.DB, authorID string, req *dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	author, err := s.userRepo.FindByID(db, authorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	isPrivate := author.RecipesPrivateDefault
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		PrepTime:    req.PrepTime,
		CookTime:    req.CookTime,
		Servings:    req.Servings,
		Ingredients: datatypes.NewJSONSlice(req.Ingredients),
		Steps:       datatypes.NewJSONSlice(req.Steps),
		Category:    models.RecipeCategory(req.Category),
		IsPrivate:   isPrivate,
		UserRatings: datatypes.JSONMap{},
	}
	if recipe.Servings < 1 {
		recipe.Servings = 1
	}

	if err := s.recipeRepo.CreateRecipe(db, recipe); err != nil {
		return nil, apperrors.InternalError("failed to create recipe").WithError(err)
	}

	if !recipe.IsPrivate {
		s.fanOutPublish(db, author, recipe)
	}

	return s.toRecipeResponse(db, recipe, authorID), nil
}

// fanOutPublish notifies followers who opted into new-recipe notifications.
// Fan-out failures never fail the publish itself.
func (s *recipeService) fanOutPublish(db *gorm.DB, author *models.User, recipe *models.Recipe) {
	log := logger.GetLogger()

	followerIDs, err := s.followRepo.FindFollowerIDs(db, author.ID)
	if err != nil {
		log.Error("failed to load followers for fan-out", "recipe_id", recipe.ID, "error", err)
		return
	}
	if len(followerIDs) == 0 {
		return
	}

	followers, err := s.userRepo.FindByIDs(db, followerIDs)
	if err != nil {
		log.Error("failed to load follower preferences", "recipe_id", recipe.ID, "error", err)
		return
	}
	recipients := make([]string, 0, len(followers))
	for i := range followers {
		if followers[i].NotifyNewRecipes {
			recipients = append(recipients, followers[i].ID)
		}
	}

	report, err := s.notificationService.NotifyRecipePublished(db, author, recipe, recipients)
	if err != nil {
		log.Warn("recipe fan-out completed with failures",
			"recipe_id", recipe.ID, "delivered", report.Delivered, "failed", report.Failed)
	}
}

func (s *recipeService) GetRecipe(db *gorm.DB, viewerID, recipeID string) (*dto.RecipeResponse, error) {
	recipe, err := s.findRecipe(db, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.IsPrivate && recipe.AuthorID != viewerID {
		return nil, apperrors.ErrNotFound(repositories.ErrRecipeNotFound)
	}
	return s.toRecipeResponse(db, recipe, viewerID), nil
}

func (s *recipeService) UpdateRecipe(db *gorm.DB, actorID, recipeID string, req *dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	recipe, err := s.findRecipe(db, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.PrepTime != nil {
		fields["prep_time"] = *req.PrepTime
	}
	if req.CookTime != nil {
		fields["cook_time"] = *req.CookTime
	}
	if req.Servings != nil {
		fields["servings"] = *req.Servings
	}
	if req.Ingredients != nil {
		fields["ingredients"] = datatypes.NewJSONSlice(*req.Ingredients)
	}
	if req.Steps != nil {
		fields["steps"] = datatypes.NewJSONSlice(*req.Steps)
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.IsPrivate != nil {
		fields["is_private"] = *req.IsPrivate
	}
	if len(fields) == 0 {
		return s.toRecipeResponse(db, recipe, actorID), nil
	}

	if err := s.recipeRepo.UpdateRecipe(db, recipeID, fields); err != nil {
		return nil, apperrors.InternalError("failed to update recipe").WithError(err)
	}

	recipe, err = s.findRecipe(db, recipeID)
	if err != nil {
		return nil, err
	}
	return s.toRecipeResponse(db, recipe, actorID), nil
}

func (s *recipeService) DeleteRecipe(db *gorm.DB, actorID string, actorRole models.UserRole, recipeID string) error {
	recipe, err := s.findRecipe(db, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != actorID && actorRole != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}

	if err := s.commentRepo.DeleteCommentsByRecipe(db, recipeID); err != nil {
		return apperrors.InternalError("failed to delete recipe comments").WithError(err)
	}
	if err := s.recipeRepo.DeleteRecipe(db, recipeID); err != nil {
		return apperrors.InternalError("failed to delete recipe").WithError(err)
	}
	return nil
}

func (s *recipeService) ListRecipes(db *gorm.DB, viewerID string, criteria repositories.RecipeCriteria) (*dto.RecipeListResponse, error) {
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 {
		criteria.PageSize = 20
	}

	recipes, total, err := s.recipeRepo.FindVisibleRecipes(db, viewerID, criteria)
	if err != nil {
		return nil, apperrors.InternalError("failed to list recipes").WithError(err)
	}

	favorites := s.favoriteLookup(db, viewerID)
	items := make([]*dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp := buildRecipeResponse(&recipes[i], viewerID)
		resp.IsFavorite = favorites[recipes[i].ID]
		items = append(items, resp)
	}
	return &dto.RecipeListResponse{
		Recipes:    items,
		Total:      total,
		Page:       criteria.Page,
		PageSize:   criteria.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(criteria.PageSize))),
	}, nil
}

func (s *recipeService) RateRecipe(db *gorm.DB, userID, recipeID string, stars int) (*dto.RatingRecordResponse, error) {
	if stars < 1 || stars > 5 {
		return nil, apperrors.ErrInvalidRating.WithDetails(map[string]interface{}{
			"stars": stars,
		})
	}

	for attempt := 0; attempt < maxRatingAttempts; attempt++ {
		recipe, err := s.findRecipe(db, recipeID)
		if err != nil {
			return nil, err
		}

		oldStars := ratingFor(recipe.UserRatings, userID)
		isNewRater := oldStars == 0

		// Incremental fold: recover the sum from the stored mean, swap the
		// caller's contribution, recompute.
		sum := recipe.Rating * float64(recipe.TotalRatings)
		sum += float64(stars) - float64(oldStars)

		count := recipe.TotalRatings
		if isNewRater {
			count++
		}

		if recipe.UserRatings == nil {
			recipe.UserRatings = datatypes.JSONMap{}
		}
		recipe.UserRatings[userID] = stars
		recipe.TotalRatings = count
		if count > 0 {
			recipe.Rating = sum / float64(count)
		} else {
			recipe.Rating = 0
		}

		err = s.recipeRepo.UpdateRecipeRating(db, recipe, recipe.Version)
		if err == nil {
			return &dto.RatingRecordResponse{
				RecipeID:     recipe.ID,
				Rating:       recipe.Rating,
				TotalRatings: recipe.TotalRatings,
				UserRating:   stars,
			}, nil
		}
		if !errors.Is(err, repositories.ErrRecipeVersionConflict) {
			return nil, apperrors.InternalError("failed to store rating").WithError(err)
		}
		logger.GetLogger().Debug("rating write lost the version race, retrying",
			"recipe_id", recipeID, "attempt", attempt+1)
	}

	return nil, apperrors.ErrConcurrentUpdate.WithDetails(map[string]interface{}{
		"recipe_id": recipeID,
		"attempts":  maxRatingAttempts,
	})
}

func (s *recipeService) AddFavorite(db *gorm.DB, userID, recipeID string) (*dto.FavoriteResponse, error) {
	recipe, err := s.findRecipe(db, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.IsPrivate && recipe.AuthorID != userID {
		return nil, apperrors.ErrNotFound(repositories.ErrRecipeNotFound)
	}

	err = s.recipeRepo.AddFavorite(db, userID, recipeID)
	if err != nil && !errors.Is(err, repositories.ErrAlreadyFavorite) {
		return nil, apperrors.InternalError("failed to add favorite").WithError(err)
	}
	return &dto.FavoriteResponse{RecipeID: recipeID, IsFavorite: true}, nil
}

func (s *recipeService) RemoveFavorite(db *gorm.DB, userID, recipeID string) (*dto.FavoriteResponse, error) {
	err := s.recipeRepo.RemoveFavorite(db, userID, recipeID)
	if err != nil && !errors.Is(err, repositories.ErrFavoriteNotFound) {
		return nil, apperrors.InternalError("failed to remove favorite").WithError(err)
	}
	return &dto.FavoriteResponse{RecipeID: recipeID, IsFavorite: false}, nil
}

func (s *recipeService) ListFavorites(db *gorm.DB, userID string) (*dto.RecipeListResponse, error) {
	recipes, err := s.recipeRepo.FindFavoriteRecipes(db, userID)
	if err != nil {
		return nil, apperrors.InternalError("failed to list favorites").WithError(err)
	}
	items := make([]*dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp := buildRecipeResponse(&recipes[i], userID)
		resp.IsFavorite = true
		items = append(items, resp)
	}
	return &dto.RecipeListResponse{
		Recipes:  items,
		Total:    int64(len(items)),
		Page:     1,
		PageSize: len(items),
	}, nil
}

func (s *recipeService) findRecipe(db *gorm.DB, recipeID string) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.FindRecipeByID(db, recipeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecipeNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError("failed to load recipe").WithError(err)
	}
	return recipe, nil
}

func (s *recipeService) toRecipeResponse(db *gorm.DB, recipe *models.Recipe, viewerID string) *dto.RecipeResponse {
	resp := buildRecipeResponse(recipe, viewerID)
	if viewerID != "" {
		if isFav, err := s.recipeRepo.IsFavorite(db, viewerID, recipe.ID); err == nil {
			resp.IsFavorite = isFav
		}
	}
	return resp
}

// favoriteLookup loads the viewer's favorite recipe IDs in a single query so
// list endpoints do not hit the favorites table once per row.
func (s *recipeService) favoriteLookup(db *gorm.DB, viewerID string) map[string]bool {
	if viewerID == "" {
		return nil
	}
	ids, err := s.recipeRepo.FindFavoriteRecipeIDs(db, viewerID)
	if err != nil {
		logger.GetLogger().Warn("failed to load viewer favorites", "user_id", viewerID, "error", err)
		return nil
	}
	favorites := make(map[string]bool, len(ids))
	for _, id := range ids {
		favorites[id] = true
	}
	return favorites
}

func buildRecipeResponse(recipe *models.Recipe, viewerID string) *dto.RecipeResponse {
	resp := &dto.RecipeResponse{
		ID:           recipe.ID,
		AuthorID:     recipe.AuthorID,
		Title:        recipe.Title,
		Description:  recipe.Description,
		ImageURL:     recipe.ImageURL,
		PrepTime:     recipe.PrepTime,
		CookTime:     recipe.CookTime,
		Servings:     recipe.Servings,
		Ingredients:  recipe.Ingredients,
		Steps:        recipe.Steps,
		Category:     string(recipe.Category),
		IsPrivate:    recipe.IsPrivate,
		Rating:       recipe.Rating,
		TotalRatings: recipe.TotalRatings,
		CreatedAt:    recipe.CreatedAt,
		UpdatedAt:    recipe.UpdatedAt,
	}
	if recipe.Author.ID != "" {
		resp.Author = &dto.UserResponse{
			ID:          recipe.Author.ID,
			DisplayName: recipe.Author.DisplayName,
			AvatarURL:   recipe.Author.AvatarURL,
		}
	}
	if viewerID != "" {
		resp.UserRating = ratingFor(recipe.UserRatings, viewerID)
	}
	return resp
}

// ratingFor reads a user's stars out of the JSONB map. Values round-trip
// through JSON as float64.
func ratingFor(ratings datatypes.JSONMap, userID string) int {
	if ratings == nil {
		return 0
	}
	switch v := ratings[userID].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
