package services

import (
	"errors"

	"recipebook_backend/internal/logger"
	"recipebook_backend/internal/models"
	"recipebook_backend/internal/repositories"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type CommentService interface {
	CreateComment(db *gorm.DB, userID, recipeID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListComments(db *gorm.DB, viewerID, recipeID string) (*dto.CommentListResponse, error)
	UpdateComment(db *gorm.DB, userID, commentID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(db *gorm.DB, actorID string, actorRole models.UserRole, commentID string) error
}

type commentService struct {
	commentRepo         repositories.CommentRepository
	recipeRepo          repositories.RecipeRepository
	userRepo            repositories.UserRepository
	notificationService NotificationService
}

func NewCommentService(
	commentRepo repositories.CommentRepository,
	recipeRepo repositories.RecipeRepository,
	userRepo repositories.UserRepository,
	notificationService NotificationService,
) CommentService {
	return &commentService{
		commentRepo:         commentRepo,
		recipeRepo:          recipeRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

func (s *commentService) CreateComment(db *gorm.DB, userID, recipeID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	recipe, err := s.recipeRepo.FindRecipeByID(db, recipeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecipeNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError("failed to load recipe").WithError(err)
	}
	if recipe.IsPrivate && recipe.AuthorID != userID {
		return nil, apperrors.ErrNotFound(repositories.ErrRecipeNotFound)
	}

	commenter, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	// Replies must point at a comment on the same recipe. Threading is one
	// level deep: replying to a reply attaches to its parent.
	parentID := req.ParentID
	if parentID != nil {
		parent, err := s.commentRepo.FindCommentByID(db, *parentID)
		if err != nil {
			if errors.Is(err, repositories.ErrCommentNotFound) {
				return nil, apperrors.ErrNotFound(err)
			}
			return nil, apperrors.InternalError("failed to load parent comment").WithError(err)
		}
		if parent.RecipeID != recipeID {
			return nil, apperrors.ErrInvalidOperation("comment", "parent comment belongs to another recipe")
		}
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	comment := &models.Comment{
		RecipeID: recipeID,
		UserID:   userID,
		Content:  req.Content,
		ParentID: parentID,
	}
	if err := s.commentRepo.CreateComment(db, comment); err != nil {
		return nil, apperrors.InternalError("failed to create comment").WithError(err)
	}

	if s.shouldNotifyAuthor(db, recipe) {
		if err := s.notificationService.NotifyRecipeComment(db, recipe, commenter); err != nil {
			logger.GetLogger().Warn("failed to notify recipe author about comment",
				"recipe_id", recipeID, "comment_id", comment.ID, "error", err)
		}
	}

	comment.User = *commenter
	return toCommentResponse(comment), nil
}

func (s *commentService) shouldNotifyAuthor(db *gorm.DB, recipe *models.Recipe) bool {
	author, err := s.userRepo.FindByID(db, recipe.AuthorID)
	if err != nil {
		return false
	}
	return author.NotifyComments
}

func (s *commentService) ListComments(db *gorm.DB, viewerID, recipeID string) (*dto.CommentListResponse, error) {
	recipe, err := s.recipeRepo.FindRecipeByID(db, recipeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecipeNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError("failed to load recipe").WithError(err)
	}
	if recipe.IsPrivate && recipe.AuthorID != viewerID {
		return nil, apperrors.ErrNotFound(repositories.ErrRecipeNotFound)
	}

	comments, err := s.commentRepo.FindCommentsByRecipe(db, recipeID)
	if err != nil {
		return nil, apperrors.InternalError("failed to list comments").WithError(err)
	}
	return &dto.CommentListResponse{
		Comments: buildCommentTree(comments),
		Total:    int64(len(comments)),
	}, nil
}

func (s *commentService) UpdateComment(db *gorm.DB, userID, commentID string, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.findComment(db, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	if err := s.commentRepo.UpdateComment(db, commentID, req.Content); err != nil {
		return nil, apperrors.InternalError("failed to update comment").WithError(err)
	}
	comment.Content = req.Content
	comment.IsEdited = true
	return toCommentResponse(comment), nil
}

func (s *commentService) DeleteComment(db *gorm.DB, actorID string, actorRole models.UserRole, commentID string) error {
	comment, err := s.findComment(db, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID && actorRole != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	if err := s.commentRepo.DeleteComment(db, commentID); err != nil {
		return apperrors.InternalError("failed to delete comment").WithError(err)
	}
	return nil
}

func (s *commentService) findComment(db *gorm.DB, commentID string) (*models.Comment, error) {
	comment, err := s.commentRepo.FindCommentByID(db, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError("failed to load comment").WithError(err)
	}
	return comment, nil
}

// buildCommentTree nests replies under their top-level parents. Input is
// ordered newest first, which carries over to both levels.
func buildCommentTree(comments []models.Comment) []*dto.CommentResponse {
	byID := make(map[string]*dto.CommentResponse, len(comments))
	roots := make([]*dto.CommentResponse, 0, len(comments))

	for i := range comments {
		resp := toCommentResponse(&comments[i])
		byID[resp.ID] = resp
		if resp.ParentID == nil {
			roots = append(roots, resp)
		}
	}
	for i := range comments {
		if comments[i].ParentID == nil {
			continue
		}
		if parent, ok := byID[*comments[i].ParentID]; ok {
			parent.Replies = append(parent.Replies, byID[comments[i].ID])
		}
	}
	return roots
}

func toCommentResponse(comment *models.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:         comment.ID,
		RecipeID:   comment.RecipeID,
		UserID:     comment.UserID,
		UserName:   comment.User.DisplayName,
		UserAvatar: comment.User.AvatarURL,
		Content:    comment.Content,
		ParentID:   comment.ParentID,
		IsEdited:   comment.IsEdited,
		CreatedAt:  comment.CreatedAt,
	}
}
