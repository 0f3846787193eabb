package workers

import (
	"context"
	"time"

	"recipebook_backend/internal/logger"
	"recipebook_backend/internal/repositories"
	"recipebook_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// driftBatchSize caps how many users one reconcile pass repairs.
const driftBatchSize = 500

// FollowReconcileWorker periodically compares the denormalized follow
// counters against the follows table and rewrites any that drifted. Drift
// can appear after a crash between the counter write and the commit, or
// after manual data surgery; the relation itself is the source of truth.
type FollowReconcileWorker struct {
	db         *gorm.DB
	followRepo repositories.FollowRepository
	interval   time.Duration
}

func NewFollowReconcileWorker(db *gorm.DB, followRepo repositories.FollowRepository, interval time.Duration) *FollowReconcileWorker {
	return &FollowReconcileWorker{
		db:         db,
		followRepo: followRepo,
		interval:   interval,
	}
}

func (w *FollowReconcileWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *FollowReconcileWorker) run(ctx context.Context) {
	log := logger.With("worker", "follow_reconcile")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("follow reconcile worker stopped")
			return
		case <-ticker.C:
			repaired, err := w.ReconcileOnce(w.db)
			logger.WorkerLog("follow_reconcile", "reconcile", err)
			if err == nil && repaired > 0 {
				log.Warn("repaired drifted follow counters", "users", repaired)
			}
		}
	}
}

// ReconcileOnce runs a single repair pass and returns how many users were
// fixed. Finding drift at all means a follow mutation left the two sides
// disagreeing, so each repair is logged with the inconsistency error for
// operators.
func (w *FollowReconcileWorker) ReconcileOnce(db *gorm.DB) (int, error) {
	drift, err := w.followRepo.FindCounterDrift(db, driftBatchSize)
	if err != nil {
		return 0, err
	}

	log := logger.With("worker", "follow_reconcile")
	repaired := 0
	for _, d := range drift {
		appErr := apperrors.ErrInconsistentFollowState.WithDetails(map[string]interface{}{
			"user_id":          d.UserID,
			"followers_count":  d.FollowersCount,
			"following_count":  d.FollowingCount,
			"actual_followers": d.ActualFollowers,
			"actual_following": d.ActualFollowing,
		})
		log.Warn("follow counter drift detected", "error", appErr)

		if err := w.followRepo.ResetCounters(db, d.UserID, d.ActualFollowers, d.ActualFollowing); err != nil {
			log.Error("failed to reset follow counters", "user_id", d.UserID, "error", err)
			continue
		}
		repaired++
	}
	return repaired, nil
}
