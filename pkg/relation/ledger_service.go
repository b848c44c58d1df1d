// Package relation owns the paired relationship writes: a user's followings
// and the target's followers, a user's favorites and the recipe's favorite
// counter.
package relation

import (
	"context"
	"errors"
	"fmt"

	"foodies-api/domain"
	"foodies-api/entities"
	"foodies-api/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errNoop aborts a paired write whose first side found the set already in
// the requested state (a concurrent request got there first).
var errNoop = errors.New("relation unchanged")

type (
	LedgerService interface {
		Follow(ctx context.Context, actorID, targetID string) error
		Unfollow(ctx context.Context, actorID, targetID string) error
		Favorite(ctx context.Context, actorID, recipeID string) error
		Unfavorite(ctx context.Context, actorID, recipeID string) error
		ForgetRecipe(ctx context.Context, recipeID uuid.UUID) (int64, error)
	}

	ledgerService struct {
		repo          RelationRepository
		transactional bool
		logger        *zap.Logger
	}

	writeFunc func(ctx context.Context, repo RelationRepository) error
)

// PartialWriteError reports a paired write whose first side persisted while
// the second did not. The intent stays pending until the reconciler replays it.
type PartialWriteError struct {
	Op       string
	IntentID uuid.UUID
	Err      error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: second write failed (intent %s): %v", e.Op, e.IntentID, e.Err)
}

func (e *PartialWriteError) Unwrap() []error {
	return []error{domain.ErrPartialWrite, e.Err}
}

func NewLedgerService(repo RelationRepository, transactional bool, logger *zap.Logger) LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ledgerService{
		repo:          repo,
		transactional: transactional,
		logger:        logger.Named("ledger"),
	}
}

func (s *ledgerService) Follow(ctx context.Context, actorID, targetID string) error {
	return finish(entities.IntentFollow, s.follow(ctx, actorID, targetID))
}

func (s *ledgerService) follow(ctx context.Context, actorID, targetID string) error {
	actor, target, err := parsePair(actorID, targetID)
	if err != nil {
		return err
	}
	if actor == target {
		return domain.ErrFollowSelf
	}

	following, err := s.repo.IsFollowing(ctx, actor, target)
	if err != nil {
		return err
	}
	if following {
		return domain.ErrAlreadyFollowing
	}

	exists, err := s.repo.UserExists(ctx, target)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	return s.paired(ctx, entities.IntentFollow, actor, target,
		func(ctx context.Context, repo RelationRepository) error {
			added, err := repo.AddFollowing(ctx, actor, target)
			if err != nil {
				return err
			}
			if !added {
				return domain.ErrAlreadyFollowing
			}
			return nil
		},
		func(ctx context.Context, repo RelationRepository) error {
			_, err := repo.AddFollower(ctx, target, actor)
			return err
		},
	)
}

func (s *ledgerService) Unfollow(ctx context.Context, actorID, targetID string) error {
	return finish(entities.IntentUnfollow, s.unfollow(ctx, actorID, targetID))
}

func (s *ledgerService) unfollow(ctx context.Context, actorID, targetID string) error {
	actor, target, err := parsePair(actorID, targetID)
	if err != nil {
		return err
	}

	following, err := s.repo.IsFollowing(ctx, actor, target)
	if err != nil {
		return err
	}
	if !following {
		return domain.ErrNotFollowing
	}

	return s.paired(ctx, entities.IntentUnfollow, actor, target,
		func(ctx context.Context, repo RelationRepository) error {
			removed, err := repo.RemoveFollowing(ctx, actor, target)
			if err != nil {
				return err
			}
			if !removed {
				return domain.ErrNotFollowing
			}
			return nil
		},
		func(ctx context.Context, repo RelationRepository) error {
			_, err := repo.RemoveFollower(ctx, target, actor)
			return err
		},
	)
}

// Favorite is idempotent: favoriting an already favorited recipe succeeds
// without touching the counter.
func (s *ledgerService) Favorite(ctx context.Context, actorID, recipeID string) error {
	return finish(entities.IntentFavorite, s.favorite(ctx, actorID, recipeID))
}

func (s *ledgerService) favorite(ctx context.Context, actorID, recipeID string) error {
	actor, recipe, err := parsePair(actorID, recipeID)
	if err != nil {
		return err
	}

	exists, err := s.repo.RecipeExists(ctx, recipe)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrRecipeNotFound
	}

	favorite, err := s.repo.IsFavorite(ctx, actor, recipe)
	if err != nil {
		return err
	}
	if favorite {
		return errNoop
	}

	return s.paired(ctx, entities.IntentFavorite, actor, recipe,
		func(ctx context.Context, repo RelationRepository) error {
			added, err := repo.AddFavorite(ctx, actor, recipe)
			if err != nil {
				return err
			}
			if !added {
				return errNoop
			}
			return nil
		},
		func(ctx context.Context, repo RelationRepository) error {
			return repo.AdjustFavoriteCount(ctx, recipe, 1)
		},
	)
}

// Unfavorite is idempotent: removing a recipe that is not a favorite succeeds
// without touching the counter.
func (s *ledgerService) Unfavorite(ctx context.Context, actorID, recipeID string) error {
	return finish(entities.IntentUnfavorite, s.unfavorite(ctx, actorID, recipeID))
}

func (s *ledgerService) unfavorite(ctx context.Context, actorID, recipeID string) error {
	actor, recipe, err := parsePair(actorID, recipeID)
	if err != nil {
		return err
	}

	favorite, err := s.repo.IsFavorite(ctx, actor, recipe)
	if err != nil {
		return err
	}
	if !favorite {
		return errNoop
	}

	return s.paired(ctx, entities.IntentUnfavorite, actor, recipe,
		func(ctx context.Context, repo RelationRepository) error {
			removed, err := repo.RemoveFavorite(ctx, actor, recipe)
			if err != nil {
				return err
			}
			if !removed {
				return errNoop
			}
			return nil
		},
		func(ctx context.Context, repo RelationRepository) error {
			return repo.AdjustFavoriteCount(ctx, recipe, -1)
		},
	)
}

// ForgetRecipe drops a deleted recipe from every user's favorites.
func (s *ledgerService) ForgetRecipe(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	removed, err := s.repo.RemoveRecipeFavorites(ctx, recipeID)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("recipe removed from favorites",
			zap.String("recipe_id", recipeID.String()),
			zap.Int64("users", removed),
		)
	}
	return removed, nil
}

func (s *ledgerService) paired(ctx context.Context, op string, actor, target uuid.UUID, first, second writeFunc) error {
	if s.transactional {
		return s.repo.Transaction(ctx, func(tx RelationRepository) error {
			if err := first(ctx, tx); err != nil {
				return err
			}
			return second(ctx, tx)
		})
	}

	intent := &entities.RelationIntent{
		ID:       uuid.New(),
		Op:       op,
		ActorID:  actor,
		TargetID: target,
		Status:   entities.IntentStatusPending,
	}
	if err := s.repo.CreateIntent(ctx, intent); err != nil {
		return fmt.Errorf("record %s intent: %w", op, err)
	}

	// once the intent is recorded both sides run to completion even if the
	// caller goes away
	ctx = context.WithoutCancel(ctx)

	if err := first(ctx, s.repo); err != nil {
		if serr := s.repo.SetIntentStatus(ctx, intent.ID, entities.IntentStatusAborted); serr != nil {
			s.logger.Warn("failed to abort intent", zap.String("intent_id", intent.ID.String()), zap.Error(serr))
		}
		return err
	}

	if err := second(ctx, s.repo); err != nil {
		if ferr := s.repo.FailIntent(ctx, intent.ID, err.Error()); ferr != nil {
			s.logger.Warn("failed to mark intent", zap.String("intent_id", intent.ID.String()), zap.Error(ferr))
		}
		metrics.LedgerPartialWrites.WithLabelValues(op).Inc()
		s.logger.Error("partial write",
			zap.String("op", op),
			zap.String("actor_id", actor.String()),
			zap.String("target_id", target.String()),
			zap.String("intent_id", intent.ID.String()),
			zap.Error(err),
		)
		return &PartialWriteError{Op: op, IntentID: intent.ID, Err: err}
	}

	if err := s.repo.SetIntentStatus(ctx, intent.ID, entities.IntentStatusDone); err != nil {
		// a pending intent whose sides are both applied replays as a no-op
		s.logger.Warn("failed to complete intent", zap.String("intent_id", intent.ID.String()), zap.Error(err))
	}
	return nil
}

func parsePair(actorID, targetID string) (uuid.UUID, uuid.UUID, error) {
	actor, err := domain.ParseID(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	target, err := domain.ParseID(targetID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return actor, target, nil
}

// finish records the outcome and hides errNoop from callers.
func finish(op string, err error) error {
	metrics.LedgerOperations.WithLabelValues(op, outcome(err)).Inc()
	if errors.Is(err, errNoop) {
		return nil
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errNoop):
		return "noop"
	case errors.Is(err, domain.ErrPartialWrite):
		return "partial"
	case errors.Is(err, domain.ErrAlreadyRelated):
		return "already_related"
	case errors.Is(err, domain.ErrNotRelated):
		return "not_related"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
