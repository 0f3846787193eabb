package workers

import (
	"context"
	"time"

	"recipebook_backend/internal/logger"
	"recipebook_backend/internal/repositories"

	"gorm.io/gorm"
)

// NotificationCleanupWorker deletes read notifications past the retention
// window, and sweeps expired refresh tokens on the same schedule.
type NotificationCleanupWorker struct {
	db               *gorm.DB
	notificationRepo repositories.NotificationRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	retention        time.Duration
}

func NewNotificationCleanupWorker(
	db *gorm.DB,
	notificationRepo repositories.NotificationRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	retention time.Duration,
) *NotificationCleanupWorker {
	return &NotificationCleanupWorker{
		db:               db,
		notificationRepo: notificationRepo,
		refreshTokenRepo: refreshTokenRepo,
		retention:        retention,
	}
}

func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *NotificationCleanupWorker) run(ctx context.Context) {
	log := logger.With("worker", "notification_cleanup")
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("notification cleanup worker stopped")
			return
		case <-ticker.C:
			w.CleanupOnce(w.db)
		}
	}
}

func (w *NotificationCleanupWorker) CleanupOnce(db *gorm.DB) {
	log := logger.With("worker", "notification_cleanup")

	cutoff := time.Now().Add(-w.retention)
	deleted, err := w.notificationRepo.DeleteReadNotificationsOlderThan(db, cutoff)
	logger.WorkerLog("notification_cleanup", "delete_read_notifications", err)
	if err == nil && deleted > 0 {
		log.Info("deleted old read notifications", "count", deleted)
	}

	expired, err := w.refreshTokenRepo.DeleteExpired(db)
	logger.WorkerLog("notification_cleanup", "delete_expired_refresh_tokens", err)
	if err == nil && expired > 0 {
		log.Info("deleted expired refresh tokens", "count", expired)
	}
}
