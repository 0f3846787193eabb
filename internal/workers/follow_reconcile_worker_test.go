package workers

import (
	"errors"
	"testing"
	"time"

	"recipebook_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reconcileFollowRepo struct {
	repositories.FollowRepository

	drift     []repositories.FollowCounterDrift
	driftErr  error
	resetErr  map[string]error
	resets    map[string][2]int64
	lastLimit int
}

func (r *reconcileFollowRepo) FindCounterDrift(db *gorm.DB, limit int) ([]repositories.FollowCounterDrift, error) {
	r.lastLimit = limit
	return r.drift, r.driftErr
}

func (r *reconcileFollowRepo) ResetCounters(db *gorm.DB, userID string, followers, following int64) error {
	if err := r.resetErr[userID]; err != nil {
		return err
	}
	if r.resets == nil {
		r.resets = make(map[string][2]int64)
	}
	r.resets[userID] = [2]int64{followers, following}
	return nil
}

func TestReconcileOnce_RepairsDriftFromRelation(t *testing.T) {
	t.Parallel()

	repo := &reconcileFollowRepo{
		drift: []repositories.FollowCounterDrift{
			{UserID: "u1", FollowersCount: 5, FollowingCount: 1, ActualFollowers: 3, ActualFollowing: 1},
			{UserID: "u2", FollowersCount: 0, FollowingCount: 7, ActualFollowers: 0, ActualFollowing: 2},
		},
	}
	worker := NewFollowReconcileWorker(nil, repo, time.Minute)

	repaired, err := worker.ReconcileOnce(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, repaired)
	assert.Equal(t, [2]int64{3, 1}, repo.resets["u1"])
	assert.Equal(t, [2]int64{0, 2}, repo.resets["u2"])
	assert.Equal(t, driftBatchSize, repo.lastLimit)
}

func TestReconcileOnce_NoDriftIsNoop(t *testing.T) {
	t.Parallel()

	repo := &reconcileFollowRepo{}
	worker := NewFollowReconcileWorker(nil, repo, time.Minute)

	repaired, err := worker.ReconcileOnce(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
	assert.Empty(t, repo.resets)
}

func TestReconcileOnce_ContinuesPastFailedReset(t *testing.T) {
	t.Parallel()

	repo := &reconcileFollowRepo{
		drift: []repositories.FollowCounterDrift{
			{UserID: "broken", ActualFollowers: 1},
			{UserID: "fine", ActualFollowers: 2},
		},
		resetErr: map[string]error{"broken": errors.New("write failed")},
	}
	worker := NewFollowReconcileWorker(nil, repo, time.Minute)

	repaired, err := worker.ReconcileOnce(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	assert.Contains(t, repo.resets, "fine")
	assert.NotContains(t, repo.resets, "broken")
}

func TestReconcileOnce_PropagatesQueryError(t *testing.T) {
	t.Parallel()

	repo := &reconcileFollowRepo{driftErr: errors.New("query failed")}
	worker := NewFollowReconcileWorker(nil, repo, time.Minute)

	_, err := worker.ReconcileOnce(nil)
	assert.Error(t, err)
}
