package repositories

import (
	"errors"

	"recipebook_backend/internal/models"

	"gorm.io/gorm"
)

var ErrFollowNotFound = errors.New("follow relation not found")

// FollowCounterDrift reports a user whose denormalized follow counters
// disagree with the follows table.
type FollowCounterDrift struct {
	UserID          string
	FollowersCount  int
	FollowingCount  int
	ActualFollowers int64
	ActualFollowing int64
}

type FollowRepository interface {
	// Follow and Unfollow apply the edge and both denormalized counters in a
	// single transaction. The returned bool reports whether state changed
	// (false for the idempotent no-op cases).
	Follow(db *gorm.DB, followerID, followeeID string) (bool, error)
	Unfollow(db *gorm.DB, followerID, followeeID string) (bool, error)

	FollowExists(db *gorm.DB, followerID, followeeID string) (bool, error)
	FindFollowerIDs(db *gorm.DB, userID string) ([]string, error)
	FindFollowingIDs(db *gorm.DB, userID string) ([]string, error)
	FindCounterDrift(db *gorm.DB, limit int) ([]FollowCounterDrift, error)
	ResetCounters(db *gorm.DB, userID string, followers, following int64) error
}

type FollowRepositoryImpl struct{}

func NewFollowRepository() FollowRepository {
	return &FollowRepositoryImpl{}
}

// Follow inserts the edge and bumps both counters in one transaction. A
// repeat call is a no-op and reports created=false.
func (r *FollowRepositoryImpl) Follow(db *gorm.DB, followerID, followeeID string) (bool, error) {
	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		exists, err := r.FollowExists(tx, followerID, followeeID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := r.createFollow(tx, followerID, followeeID); err != nil {
			return err
		}
		if err := r.adjustCounters(tx, followerID, followeeID, 1); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// Unfollow removes the edge and decrements both counters in one transaction.
// Unfollowing a user that was never followed is a no-op.
func (r *FollowRepositoryImpl) Unfollow(db *gorm.DB, followerID, followeeID string) (bool, error) {
	removed := false
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := r.deleteFollow(tx, followerID, followeeID); err != nil {
			if errors.Is(err, ErrFollowNotFound) {
				return nil
			}
			return err
		}
		if err := r.adjustCounters(tx, followerID, followeeID, -1); err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}

func (r *FollowRepositoryImpl) createFollow(db *gorm.DB, followerID, followeeID string) error {
	follow := &models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
	return db.Create(follow).Error
}

func (r *FollowRepositoryImpl) deleteFollow(db *gorm.DB, followerID, followeeID string) error {
	result := db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

func (r *FollowRepositoryImpl) FollowExists(db *gorm.DB, followerID, followeeID string) (bool, error) {
	var count int64
	err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *FollowRepositoryImpl) FindFollowerIDs(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *FollowRepositoryImpl) FindFollowingIDs(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// adjustCounters bumps the denormalized follow counters on both user rows.
// Must run inside the same transaction as the follows-table write.
func (r *FollowRepositoryImpl) adjustCounters(db *gorm.DB, followerID, followeeID string, delta int) error {
	if err := db.Model(&models.User{}).Where("id = ?", followerID).
		UpdateColumn("following_count", gorm.Expr("following_count + ?", delta)).Error; err != nil {
		return err
	}
	return db.Model(&models.User{}).Where("id = ?", followeeID).
		UpdateColumn("followers_count", gorm.Expr("followers_count + ?", delta)).Error
}

// FindCounterDrift returns users whose counters disagree with the follows
// table. Used by the reconcile worker.
func (r *FollowRepositoryImpl) FindCounterDrift(db *gorm.DB, limit int) ([]FollowCounterDrift, error) {
	var drift []FollowCounterDrift
	err := db.Raw(`
		SELECT u.id AS user_id,
		       u.followers_count,
		       u.following_count,
		       (SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id) AS actual_followers,
		       (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS actual_following
		FROM users u
		WHERE u.followers_count != (SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id)
		   OR u.following_count != (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id)
		LIMIT ?`, limit).Scan(&drift).Error
	return drift, err
}

func (r *FollowRepositoryImpl) ResetCounters(db *gorm.DB, userID string, followers, following int64) error {
	return db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"followers_count": followers,
			"following_count": following,
		}).Error
}
