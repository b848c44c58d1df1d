package user

import (
	"context"

	"foodies-api/entities"
	"foodies-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		RegisterUser(ctx context.Context, user *entities.User) (*entities.User, error)
		CheckEmailExists(ctx context.Context, email string) (bool, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
		UpdateToken(ctx context.Context, id uuid.UUID, token *string) error
		UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error

		GetFavoriteRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
		CountFavorites(ctx context.Context, userID uuid.UUID) (int64, error)
		CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)
		CountFollowings(ctx context.Context, userID uuid.UUID) (int64, error)
		GetFollowers(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]*entities.User, int64, error)
		GetFollowings(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]*entities.User, int64, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) RegisterUser(ctx context.Context, user *entities.User) (*entities.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("token", token).Error
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("avatar", avatar).Error
}

func (r *userRepository) GetFavoriteRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.UserFavorite{}).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) count(ctx context.Context, model interface{}, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *userRepository) CountFavorites(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.count(ctx, &entities.UserFavorite{}, userID)
}

func (r *userRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.count(ctx, &entities.UserFollower{}, userID)
}

func (r *userRepository) CountFollowings(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.count(ctx, &entities.UserFollowing{}, userID)
}

// listRelated pages through the users on the other side of a relation table.
func (r *userRepository) listRelated(ctx context.Context, table, otherColumn string, userID uuid.UUID, p pagination.Params) ([]*entities.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Table(table).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*entities.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN "+table+" rel ON rel."+otherColumn+" = users.id").
		Where("rel.user_id = ?", userID).
		Order("rel.created_at DESC").
		Scopes(p.Scope()).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) GetFollowers(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]*entities.User, int64, error) {
	return r.listRelated(ctx, "user_followers", "follower_id", userID, p)
}

func (r *userRepository) GetFollowings(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]*entities.User, int64, error) {
	return r.listRelated(ctx, "user_followings", "following_id", userID, p)
}
