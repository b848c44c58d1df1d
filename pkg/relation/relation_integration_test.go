//go:build integration

package relation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"foodies-api/entities"
	"foodies-api/internal/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUsers(t *testing.T, db *gorm.DB, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, n)
	for i := range ids {
		u := entities.User{ID: uuid.New(), Name: fmt.Sprintf("user-%d", i), Email: fmt.Sprintf("user-%d@foodies.test", i), Password: "x"}
		require.NoError(t, db.Create(&u).Error)
		ids[i] = u.ID
	}
	return ids
}

func TestIntegration_ConcurrentFavorites(t *testing.T) {
	db := testdb.Start(t)
	ctx := context.Background()
	users := seedUsers(t, db, 25)

	recipe := entities.Recipe{ID: uuid.New(), OwnerID: users[0], Title: "Bakewell tart", Instructions: "bake", Description: "tart", Time: "60"}
	require.NoError(t, db.Create(&recipe).Error)

	for _, transactional := range []bool{true, false} {
		repo := NewRelationRepository(db)
		ledger := NewLedgerService(repo, transactional, nil)

		// repair passes racing the writes must never move the counter off the set
		stop := make(chan struct{})
		sweeps := make(chan error, 1)
		go func() {
			rec := NewReconciler(repo, time.Minute, nil)
			for {
				select {
				case <-stop:
					close(sweeps)
					return
				default:
				}
				if _, err := rec.Run(ctx); err != nil {
					sweeps <- err
					close(sweeps)
					return
				}
			}
		}()

		var wg sync.WaitGroup
		for _, u := range users {
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(u uuid.UUID) {
					defer wg.Done()
					assert.NoError(t, ledger.Favorite(ctx, u.String(), recipe.ID.String()))
				}(u)
			}
		}
		wg.Wait()
		close(stop)
		require.NoError(t, <-sweeps)

		var stored entities.Recipe
		require.NoError(t, db.First(&stored, "id = ?", recipe.ID).Error)
		assert.EqualValues(t, len(users), stored.FavoriteCount)

		for _, u := range users {
			require.NoError(t, ledger.Unfavorite(ctx, u.String(), recipe.ID.String()))
		}
		require.NoError(t, db.First(&stored, "id = ?", recipe.ID).Error)
		assert.EqualValues(t, 0, stored.FavoriteCount)
	}
}

func TestIntegration_FollowAndReconcile(t *testing.T) {
	db := testdb.Start(t)
	ctx := context.Background()
	users := seedUsers(t, db, 3)
	a, b, c := users[0], users[1], users[2]

	repo := NewRelationRepository(db)
	ledger := NewLedgerService(repo, true, nil)
	require.NoError(t, ledger.Follow(ctx, a.String(), b.String()))

	// out-of-band drift: a dangling follower row and a missing mirror
	require.NoError(t, db.Create(&entities.UserFollower{UserID: c, FollowerID: a}).Error)
	require.NoError(t, db.Create(&entities.UserFollowing{UserID: b, FollowingID: c}).Error)

	report, err := NewReconciler(repo, time.Minute, nil).Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.FollowersAdded)
	assert.EqualValues(t, 1, report.FollowersRemoved)

	var followers []entities.UserFollower
	require.NoError(t, db.Order("user_id").Find(&followers).Error)
	assert.Len(t, followers, 2)

	report, err = NewReconciler(repo, time.Minute, nil).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.FollowersAdded+report.FollowersRemoved)
}
