package domain

import (
	"fmt"
	"mime/multipart"
)

var (
	MessageSuccessRegister      = "user registered successfully"
	MessageSuccessLogin         = "user logged in successfully"
	MessageSuccessLogout        = "user logged out successfully"
	MessageSuccessGetUser       = "success get user"
	MessageSuccessUpdateAvatar  = "avatar updated successfully"
	MessageSuccessGetFollowers  = "success get followers"
	MessageSuccessGetFollowings = "success get followings"

	MessageFailedRegister      = "failed to register user"
	MessageFailedLogin         = "failed to login"
	MessageFailedLogout        = "failed to logout"
	MessageFailedGetUser       = "failed to get user"
	MessageFailedUpdateAvatar  = "failed to update avatar"
	MessageFailedGetFollowers  = "failed to get followers"
	MessageFailedGetFollowings = "failed to get followings"

	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrEmailAlreadyExists = fmt.Errorf("email in use: %w", ErrConflict)
	ErrCredentialInvalid  = fmt.Errorf("email or password is wrong: %w", ErrUnauthorized)
	ErrAvatarRequired     = fmt.Errorf("avatar file is required: %w", ErrInvalidInput)
)

type (
	RegisterRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	UserResponse struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Email  string  `json:"email"`
		Avatar *string `json:"avatar"`
	}

	AuthResponse struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}

	// ProfileResponse is the profile card. The favorite and following
	// counters are only filled in when the viewer looks at their own profile.
	ProfileResponse struct {
		ID                   string  `json:"id"`
		Name                 string  `json:"name"`
		Email                string  `json:"email"`
		Avatar               *string `json:"avatar"`
		OwnRecipesCount      int64   `json:"own_recipes_count"`
		FollowersCount       int64   `json:"followers_count"`
		FavoriteRecipesCount *int64  `json:"favorite_recipes_count,omitempty"`
		FollowingCount       *int64  `json:"following_count,omitempty"`
	}

	UpdateAvatarRequest struct {
		Avatar *multipart.FileHeader
	}

	AvatarResponse struct {
		Avatar string `json:"avatar"`
	}
)
