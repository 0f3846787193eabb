package services

import (
	"testing"

	"recipebook_backend/internal/models"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentServiceForTest(users []*models.User, recipes []*models.Recipe) (CommentService, *fakeCommentRepo, *fakeNotificationRepo) {
	userRepo := newFakeUserRepo(users...)
	recipeRepo := newFakeRecipeRepo(recipes...)
	commentRepo := newFakeCommentRepo()
	notificationRepo := newFakeNotificationRepo()
	notificationService := NewNotificationService(notificationRepo, nil)
	svc := NewCommentService(commentRepo, recipeRepo, userRepo, notificationService)
	return svc, commentRepo, notificationRepo
}

func TestCreateComment_NotifiesRecipeAuthor(t *testing.T) {
	t.Parallel()

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}, DisplayName: "Marie", NotifyComments: true}
	paul := &models.User{BaseModel: models.BaseModel{ID: "paul"}, DisplayName: "Paul"}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author", Title: "Crêpes"}
	svc, _, notificationRepo := newCommentServiceForTest([]*models.User{author, paul}, []*models.Recipe{recipe})

	resp, err := svc.CreateComment(nil, "paul", "r1", &dto.CreateCommentRequest{Content: "Délicieux !"})
	require.NoError(t, err)
	assert.Equal(t, "Paul", resp.UserName)

	notifications := notificationRepo.forUser("author")
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "Paul")
	assert.Contains(t, notifications[0].Message, "Crêpes")
}

func TestCreateComment_SelfCommentDoesNotNotify(t *testing.T) {
	t.Parallel()

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}, DisplayName: "Marie", NotifyComments: true}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author", Title: "Crêpes"}
	svc, _, notificationRepo := newCommentServiceForTest([]*models.User{author}, []*models.Recipe{recipe})

	_, err := svc.CreateComment(nil, "author", "r1", &dto.CreateCommentRequest{Content: "Note pour moi"})
	require.NoError(t, err)
	assert.Empty(t, notificationRepo.forUser("author"))
}

func TestCreateComment_AuthorPreferenceRespected(t *testing.T) {
	t.Parallel()

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}, NotifyComments: false}
	paul := &models.User{BaseModel: models.BaseModel{ID: "paul"}, DisplayName: "Paul"}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author"}
	svc, _, notificationRepo := newCommentServiceForTest([]*models.User{author, paul}, []*models.Recipe{recipe})

	_, err := svc.CreateComment(nil, "paul", "r1", &dto.CreateCommentRequest{Content: "Bravo"})
	require.NoError(t, err)
	assert.Empty(t, notificationRepo.forUser("author"))
}

func TestCreateComment_ReplyToReplyAttachesToRoot(t *testing.T) {
	t.Parallel()

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author"}
	svc, _, _ := newCommentServiceForTest([]*models.User{author}, []*models.Recipe{recipe})

	root, err := svc.CreateComment(nil, "author", "r1", &dto.CreateCommentRequest{Content: "racine"})
	require.NoError(t, err)
	reply, err := svc.CreateComment(nil, "author", "r1", &dto.CreateCommentRequest{Content: "réponse", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	// Threading is one level deep.
	deep, err := svc.CreateComment(nil, "author", "r1", &dto.CreateCommentRequest{Content: "sous-réponse", ParentID: &reply.ID})
	require.NoError(t, err)
	require.NotNil(t, deep.ParentID)
	assert.Equal(t, root.ID, *deep.ParentID)

	list, err := svc.ListComments(nil, "author", "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	require.Len(t, list.Comments, 1)
	assert.Len(t, list.Comments[0].Replies, 2)
}

func TestCreateComment_ParentFromAnotherRecipeRejected(t *testing.T) {
	t.Parallel()

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}}
	first := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author"}
	second := &models.Recipe{BaseModel: models.BaseModel{ID: "r2"}, AuthorID: "author"}
	svc, _, _ := newCommentServiceForTest([]*models.User{author}, []*models.Recipe{first, second})

	root, err := svc.CreateComment(nil, "author", "r1", &dto.CreateCommentRequest{Content: "ici"})
	require.NoError(t, err)

	_, err = svc.CreateComment(nil, "author", "r2", &dto.CreateCommentRequest{Content: "ailleurs", ParentID: &root.ID})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestCreateComment_PrivateRecipeHidden(t *testing.T) {
	t.Parallel()

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}}
	paul := &models.User{BaseModel: models.BaseModel{ID: "paul"}}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author", IsPrivate: true}
	svc, _, _ := newCommentServiceForTest([]*models.User{author, paul}, []*models.Recipe{recipe})

	_, err := svc.CreateComment(nil, "paul", "r1", &dto.CreateCommentRequest{Content: "?"})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestUpdateComment_OwnerOnly(t *testing.T) {
	t.Parallel()

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}}
	paul := &models.User{BaseModel: models.BaseModel{ID: "paul"}}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author"}
	svc, _, _ := newCommentServiceForTest([]*models.User{author, paul}, []*models.Recipe{recipe})

	comment, err := svc.CreateComment(nil, "paul", "r1", &dto.CreateCommentRequest{Content: "v1"})
	require.NoError(t, err)

	_, err = svc.UpdateComment(nil, "author", comment.ID, &dto.UpdateCommentRequest{Content: "hack"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientPermissions))

	updated, err := svc.UpdateComment(nil, "paul", comment.ID, &dto.UpdateCommentRequest{Content: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Content)
	assert.True(t, updated.IsEdited)
}

func TestDeleteComment_AdminOverride(t *testing.T) {
	t.Parallel()

	author := &models.User{BaseModel: models.BaseModel{ID: "author"}}
	paul := &models.User{BaseModel: models.BaseModel{ID: "paul"}}
	recipe := &models.Recipe{BaseModel: models.BaseModel{ID: "r1"}, AuthorID: "author"}
	svc, commentRepo, _ := newCommentServiceForTest([]*models.User{author, paul}, []*models.Recipe{recipe})

	comment, err := svc.CreateComment(nil, "paul", "r1", &dto.CreateCommentRequest{Content: "spam"})
	require.NoError(t, err)

	err = svc.DeleteComment(nil, "author", models.UserRoleUser, comment.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientPermissions))

	require.NoError(t, svc.DeleteComment(nil, "admin", models.UserRoleAdmin, comment.ID))
	count, _ := commentRepo.CountCommentsByRecipe(nil, "r1")
	assert.Equal(t, int64(0), count)
}
