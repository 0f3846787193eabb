package services

import (
	"fmt"
	"sync"

	"recipebook_backend/internal/logger"
	"recipebook_backend/internal/models"
	"recipebook_backend/internal/repositories"
	"recipebook_backend/internal/services/dto"
	"recipebook_backend/pkg/apperrors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Feed message templates. The client renders these verbatim.
const (
	msgNewRecipe   = "%s a publié une nouvelle recette : %s"
	msgNewComment  = "%s a commenté votre recette : %s"
	msgNewFollower = "%s a commencé à vous suivre"
)

// fanoutConcurrency bounds parallel notification writes during a publish
// fan-out.
const fanoutConcurrency = 8

// RealtimePusher delivers an event to a connected user, if any. Implemented
// by the websocket manager; delivery is best effort and never blocks the
// caller on a slow client.
type RealtimePusher interface {
	PushToUser(userID string, event interface{})
}

type NotificationService interface {
	// NotifyRecipePublished writes one notification per follower. Individual
	// failures do not abort the remaining writes; if any write failed the
	// report carries the counts and the returned error is a partial-fanout
	// error.
	NotifyRecipePublished(db *gorm.DB, author *models.User, recipe *models.Recipe, followerIDs []string) (*dto.FanoutReport, error)

	NotifyNewFollower(db *gorm.DB, followeeID string, follower *models.User) error
	NotifyRecipeComment(db *gorm.DB, recipe *models.Recipe, commenter *models.User) error

	GetUserNotifications(db *gorm.DB, userID string, criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) error
	GetUnreadCount(db *gorm.DB, userID string) (int64, error)
	DeleteNotification(db *gorm.DB, userID, notificationID string) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	pusher           RealtimePusher
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, pusher RealtimePusher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		pusher:           pusher,
	}
}

func (s *notificationService) NotifyRecipePublished(db *gorm.DB, author *models.User, recipe *models.Recipe, followerIDs []string) (*dto.FanoutReport, error) {
	log := logger.GetLogger()
	report := &dto.FanoutReport{Total: len(followerIDs)}
	if len(followerIDs) == 0 {
		return report, nil
	}

	message := fmt.Sprintf(msgNewRecipe, author.DisplayName, recipe.Title)
	linkTo := "/recipe/" + recipe.ID

	var (
		mu        sync.Mutex
		delivered int
		firstErr  error
	)

	g := errgroup.Group{}
	g.SetLimit(fanoutConcurrency)
	for _, followerID := range followerIDs {
		followerID := followerID
		g.Go(func() error {
			notification := &models.Notification{
				UserID:  followerID,
				Type:    repositories.NotificationTypeNewRecipe,
				Message: message,
				LinkTo:  linkTo,
			}
			if err := s.notificationRepo.CreateNotification(db, notification); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				log.Warn("notification write failed during fan-out",
					"recipe_id", recipe.ID, "follower_id", followerID, "error", err)
				return nil
			}
			mu.Lock()
			delivered++
			mu.Unlock()
			s.push(followerID, notification)
			return nil
		})
	}
	_ = g.Wait()

	report.Delivered = delivered
	report.Failed = report.Total - delivered
	if report.Failed > 0 {
		return report, apperrors.ErrPartialFanout(firstErr, report.Failed, report.Total)
	}
	return report, nil
}

func (s *notificationService) NotifyNewFollower(db *gorm.DB, followeeID string, follower *models.User) error {
	notification := &models.Notification{
		UserID:  followeeID,
		Type:    repositories.NotificationTypeNewFollower,
		Message: fmt.Sprintf(msgNewFollower, follower.DisplayName),
		LinkTo:  "/profile/" + follower.ID,
	}
	if err := s.notificationRepo.CreateNotification(db, notification); err != nil {
		return apperrors.InternalError("failed to create follower notification").WithError(err)
	}
	s.push(followeeID, notification)
	return nil
}

func (s *notificationService) NotifyRecipeComment(db *gorm.DB, recipe *models.Recipe, commenter *models.User) error {
	// Authors do not get notified about their own comments.
	if recipe.AuthorID == commenter.ID {
		return nil
	}
	notification := &models.Notification{
		UserID:  recipe.AuthorID,
		Type:    repositories.NotificationTypeNewComment,
		Message: fmt.Sprintf(msgNewComment, commenter.DisplayName, recipe.Title),
		LinkTo:  "/recipe/" + recipe.ID,
	}
	if err := s.notificationRepo.CreateNotification(db, notification); err != nil {
		return apperrors.InternalError("failed to create comment notification").WithError(err)
	}
	s.push(recipe.AuthorID, notification)
	return nil
}

func (s *notificationService) GetUserNotifications(db *gorm.DB, userID string, criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error) {
	repoCriteria := repositories.NotificationCriteria{
		UnreadOnly: criteria.UnreadOnly,
		Type:       criteria.Type,
		Page:       criteria.Page,
		PageSize:   criteria.PageSize,
	}
	if repoCriteria.Page < 1 {
		repoCriteria.Page = 1
	}
	if repoCriteria.PageSize < 1 {
		repoCriteria.PageSize = 20
	}

	notifications, total, err := s.notificationRepo.FindUserNotifications(db, userID, repoCriteria)
	if err != nil {
		return nil, apperrors.InternalError("failed to load notifications").WithError(err)
	}
	unread, err := s.notificationRepo.GetUnreadCount(db, userID)
	if err != nil {
		return nil, apperrors.InternalError("failed to count unread notifications").WithError(err)
	}

	items := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, toNotificationResponse(&notifications[i]))
	}
	return &dto.NotificationListResponse{
		Notifications: items,
		Total:         total,
		UnreadCount:   unread,
		Page:          repoCriteria.Page,
		PageSize:      repoCriteria.PageSize,
	}, nil
}

func (s *notificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	notification, err := s.findOwned(db, userID, notificationID)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	if err := s.notificationRepo.MarkAsRead(db, notificationID); err != nil {
		return apperrors.InternalError("failed to mark notification as read").WithError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(db *gorm.DB, userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(db, userID); err != nil {
		return apperrors.InternalError("failed to mark notifications as read").WithError(err)
	}
	return nil
}

func (s *notificationService) GetUnreadCount(db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(db, userID)
	if err != nil {
		return 0, apperrors.InternalError("failed to count unread notifications").WithError(err)
	}
	return count, nil
}

func (s *notificationService) DeleteNotification(db *gorm.DB, userID, notificationID string) error {
	if _, err := s.findOwned(db, userID, notificationID); err != nil {
		return err
	}
	if err := s.notificationRepo.DeleteNotification(db, notificationID); err != nil {
		return apperrors.InternalError("failed to delete notification").WithError(err)
	}
	return nil
}

func (s *notificationService) findOwned(db *gorm.DB, userID, notificationID string) (*models.Notification, error) {
	notification, err := s.notificationRepo.FindNotificationByID(db, notificationID)
	if err != nil {
		if err == repositories.ErrNotificationNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError("failed to load notification").WithError(err)
	}
	if notification.UserID != userID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return notification, nil
}

func (s *notificationService) push(userID string, notification *models.Notification) {
	if s.pusher == nil {
		return
	}
	s.pusher.PushToUser(userID, map[string]interface{}{
		"event": "notification",
		"data":  toNotificationResponse(notification),
	})
}

func toNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Message:   n.Message,
		LinkTo:    n.LinkTo,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
