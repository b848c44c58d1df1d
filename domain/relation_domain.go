package domain

import "fmt"

var (
	MessageSuccessFollow     = "user followed successfully"
	MessageSuccessUnfollow   = "user unfollowed successfully"
	MessageSuccessFavorite   = "recipe added to favorites"
	MessageSuccessUnfavorite = "recipe removed from favorites"
	MessageSuccessReconcile  = "reconciliation finished"

	MessageFailedFollow     = "failed to follow user"
	MessageFailedUnfollow   = "failed to unfollow user"
	MessageFailedFavorite   = "failed to add recipe to favorites"
	MessageFailedUnfavorite = "failed to remove recipe from favorites"
	MessageFailedReconcile  = "failed to reconcile relationships"

	ErrAlreadyFollowing = fmt.Errorf("following already exists: %w", ErrAlreadyRelated)
	ErrNotFollowing     = fmt.Errorf("following not found: %w", ErrNotRelated)
	ErrFollowSelf       = fmt.Errorf("cannot follow yourself: %w", ErrInvalidInput)
)

type (
	FollowResponse struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Email  string  `json:"email"`
		Avatar *string `json:"avatar"`
	}

	ReconcileReport struct {
		IntentsReplayed      int64 `json:"intents_replayed"`
		FollowersAdded       int64 `json:"followers_added"`
		FollowersRemoved     int64 `json:"followers_removed"`
		FavoriteCountsFixed  int64 `json:"favorite_counts_fixed"`
		DanglingFavorites    int64 `json:"dangling_favorites_removed"`
		OwnRecipeCountsFixed int64 `json:"own_recipe_counts_fixed"`
	}
)
