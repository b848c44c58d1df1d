package relation

import (
	"context"
	"time"

	"foodies-api/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationRepository stores the set-typed relations one row per element.
// Add* and Remove* are single statements and report whether the set changed,
// so concurrent mutations of the same user or recipe commute.
type (
	RelationRepository interface {
		Transaction(ctx context.Context, fn func(repo RelationRepository) error) error

		UserExists(ctx context.Context, id uuid.UUID) (bool, error)
		RecipeExists(ctx context.Context, id uuid.UUID) (bool, error)

		IsFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error)
		AddFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error)
		RemoveFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error)
		AddFollower(ctx context.Context, userID, followerID uuid.UUID) (bool, error)
		RemoveFollower(ctx context.Context, userID, followerID uuid.UUID) (bool, error)

		IsFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
		AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
		RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
		AdjustFavoriteCount(ctx context.Context, recipeID uuid.UUID, delta int64) error
		RemoveRecipeFavorites(ctx context.Context, recipeID uuid.UUID) (int64, error)

		CreateIntent(ctx context.Context, intent *entities.RelationIntent) error
		SetIntentStatus(ctx context.Context, id uuid.UUID, status string) error
		FailIntent(ctx context.Context, id uuid.UUID, reason string) error
		GetPendingIntents(ctx context.Context, olderThan time.Time, limit int) ([]*entities.RelationIntent, error)

		AddMissingFollowers(ctx context.Context) (int64, error)
		RemoveOrphanFollowers(ctx context.Context) (int64, error)
		DriftedFavoriteCounts(ctx context.Context) ([]uuid.UUID, error)
		LockRecipe(ctx context.Context, recipeID uuid.UUID) (bool, error)
		RecountFavoriteCount(ctx context.Context, recipeID uuid.UUID) (bool, error)
		HasFavoriteIntentSince(ctx context.Context, recipeID uuid.UUID, since time.Time) (bool, error)
		RemoveDanglingFavorites(ctx context.Context) (int64, error)
		RecountOwnRecipes(ctx context.Context) (int64, error)
	}

	relationRepository struct {
		db *gorm.DB
	}
)

func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) Transaction(ctx context.Context, fn func(repo RelationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&relationRepository{db: tx})
	})
}

func (r *relationRepository) exists(ctx context.Context, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where(query, args...).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *relationRepository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &entities.User{}, "id = ?", id)
}

func (r *relationRepository) RecipeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &entities.Recipe{}, "id = ?", id)
}

func (r *relationRepository) insertIgnore(ctx context.Context, row any) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	return res.RowsAffected > 0, res.Error
}

func (r *relationRepository) delete(ctx context.Context, model any, query string, args ...any) (bool, error) {
	res := r.db.WithContext(ctx).
		Where(query, args...).
		Delete(model)
	return res.RowsAffected > 0, res.Error
}

func (r *relationRepository) IsFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	return r.exists(ctx, &entities.UserFollowing{}, "user_id = ? AND following_id = ?", userID, targetID)
}

func (r *relationRepository) AddFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	return r.insertIgnore(ctx, &entities.UserFollowing{UserID: userID, FollowingID: targetID})
}

func (r *relationRepository) RemoveFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	return r.delete(ctx, &entities.UserFollowing{}, "user_id = ? AND following_id = ?", userID, targetID)
}

func (r *relationRepository) AddFollower(ctx context.Context, userID, followerID uuid.UUID) (bool, error) {
	return r.insertIgnore(ctx, &entities.UserFollower{UserID: userID, FollowerID: followerID})
}

func (r *relationRepository) RemoveFollower(ctx context.Context, userID, followerID uuid.UUID) (bool, error) {
	return r.delete(ctx, &entities.UserFollower{}, "user_id = ? AND follower_id = ?", userID, followerID)
}

func (r *relationRepository) IsFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	return r.exists(ctx, &entities.UserFavorite{}, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *relationRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	return r.insertIgnore(ctx, &entities.UserFavorite{UserID: userID, RecipeID: recipeID})
}

func (r *relationRepository) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	return r.delete(ctx, &entities.UserFavorite{}, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

// AdjustFavoriteCount is a single atomic UPDATE; the counter never drops
// below zero.
func (r *relationRepository) AdjustFavoriteCount(ctx context.Context, recipeID uuid.UUID, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("id = ?", recipeID).
		UpdateColumn("favorite_count", gorm.Expr("GREATEST(favorite_count + ?, 0)", delta)).Error
}

func (r *relationRepository) RemoveRecipeFavorites(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&entities.UserFavorite{})
	return res.RowsAffected, res.Error
}

func (r *relationRepository) CreateIntent(ctx context.Context, intent *entities.RelationIntent) error {
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *relationRepository) SetIntentStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&entities.RelationIntent{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *relationRepository) FailIntent(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&entities.RelationIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts": gorm.Expr("attempts + 1"),
			"last_err": reason,
		}).Error
}

func (r *relationRepository) GetPendingIntents(ctx context.Context, olderThan time.Time, limit int) ([]*entities.RelationIntent, error) {
	var intents []*entities.RelationIntent
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", entities.IntentStatusPending, olderThan).
		Order("created_at asc").
		Limit(limit).
		Find(&intents).Error; err != nil {
		return nil, err
	}
	return intents, nil
}

// user_followings is authoritative: it is the side written first by follow
// and removed first by unfollow.
func (r *relationRepository) AddMissingFollowers(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO user_followers (user_id, follower_id, created_at)
		SELECT f.following_id, f.user_id, NOW()
		FROM user_followings f
		WHERE NOT EXISTS (
			SELECT 1 FROM user_followers r
			WHERE r.user_id = f.following_id AND r.follower_id = f.user_id
		)
		ON CONFLICT DO NOTHING`)
	return res.RowsAffected, res.Error
}

func (r *relationRepository) RemoveOrphanFollowers(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM user_followers r
		WHERE NOT EXISTS (
			SELECT 1 FROM user_followings f
			WHERE f.user_id = r.follower_id AND f.following_id = r.user_id
		)`)
	return res.RowsAffected, res.Error
}

// DriftedFavoriteCounts lists recipes whose counter disagrees with the
// favorite set. The answer is only a hint: each recipe is recounted again
// under its row lock.
func (r *relationRepository) DriftedFavoriteCounts(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("favorite_count <> (SELECT COUNT(*) FROM user_favorites uf WHERE uf.recipe_id = recipes.id)").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// LockRecipe takes the row lock AdjustFavoriteCount also needs. NO KEY UPDATE
// leaves favorite inserts, which only share-lock the key, unblocked. It must
// run inside a transaction.
func (r *relationRepository) LockRecipe(ctx context.Context, recipeID uuid.UUID) (bool, error) {
	var rows []entities.Recipe
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "NO KEY UPDATE"}).
		Select("id").
		Where("id = ?", recipeID).
		Find(&rows)
	return res.RowsAffected > 0, res.Error
}

func (r *relationRepository) RecountFavoriteCount(ctx context.Context, recipeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE recipes
		SET favorite_count = c.cnt
		FROM (SELECT COUNT(*) AS cnt FROM user_favorites WHERE recipe_id = ?) c
		WHERE recipes.id = ? AND recipes.favorite_count <> c.cnt`, recipeID, recipeID)
	return res.RowsAffected > 0, res.Error
}

func (r *relationRepository) HasFavoriteIntentSince(ctx context.Context, recipeID uuid.UUID, since time.Time) (bool, error) {
	return r.exists(ctx, &entities.RelationIntent{},
		"target_id = ? AND op IN ? AND status = ? AND created_at >= ?",
		recipeID,
		[]string{entities.IntentFavorite, entities.IntentUnfavorite},
		entities.IntentStatusPending,
		since,
	)
}

func (r *relationRepository) RemoveDanglingFavorites(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM user_favorites uf
		WHERE NOT EXISTS (SELECT 1 FROM recipes r WHERE r.id = uf.recipe_id)`)
	return res.RowsAffected, res.Error
}

func (r *relationRepository) RecountOwnRecipes(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE users u
		SET own_recipes_count = c.cnt
		FROM (
			SELECT uu.id, COUNT(r.id) AS cnt
			FROM users uu
			LEFT JOIN recipes r ON r.owner_id = uu.id
			GROUP BY uu.id
		) c
		WHERE u.id = c.id AND u.own_recipes_count <> c.cnt`)
	return res.RowsAffected, res.Error
}
