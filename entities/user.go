package entities

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"not null" json:"-"`
	Avatar          *string   `json:"avatar"`
	Token           *string   `json:"-"`
	OwnRecipesCount int64     `gorm:"not null;default:0" json:"own_recipes_count"`

	Timestamp
}

// UserFollowing is one element of a user's following set.
type UserFollowing struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"following_id"`
	CreatedAt   time.Time `gorm:"type:timestamp;autoCreateTime" json:"created_at"`
}

// UserFollower is one element of a user's followers set. It mirrors
// UserFollowing and is written by the same paired mutation.
type UserFollower struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"follower_id"`
	CreatedAt  time.Time `gorm:"type:timestamp;autoCreateTime" json:"created_at"`
}

type UserFavorite struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"recipe_id"`
	CreatedAt time.Time `gorm:"type:timestamp;autoCreateTime" json:"created_at"`
}
