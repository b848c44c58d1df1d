package relation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodies-api/domain"
	"foodies-api/entities"
	"foodies-api/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultReplayBatch = 500

// errRecountDeferred rolls back a recount that raced a favorite write still
// in flight. The recipe is picked up again by a later pass.
var errRecountDeferred = errors.New("favorite write in flight")

type (
	// Reconciler restores the relationship invariants after partial writes
	// or out-of-band edits. Every pass is idempotent.
	Reconciler interface {
		Run(ctx context.Context) (domain.ReconcileReport, error)
	}

	reconciler struct {
		repo   RelationRepository
		grace  time.Duration
		batch  int
		logger *zap.Logger
		now    func() time.Time
	}
)

// NewReconciler replays intents that stayed pending for longer than grace.
// Younger intents may still belong to a paired write in flight.
func NewReconciler(repo RelationRepository, grace time.Duration, logger *zap.Logger) Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reconciler{
		repo:   repo,
		grace:  grace,
		batch:  defaultReplayBatch,
		logger: logger.Named("reconciler"),
		now:    time.Now,
	}
}

func (r *reconciler) Run(ctx context.Context) (domain.ReconcileReport, error) {
	var report domain.ReconcileReport

	replayed, err := r.replayIntents(ctx)
	report.IntentsReplayed = replayed
	if err != nil {
		return r.done(report, fmt.Errorf("replay intents: %w", err))
	}

	steps := []struct {
		kind string
		run  func(context.Context) (int64, error)
		into *int64
	}{
		{"followers_added", r.repo.AddMissingFollowers, &report.FollowersAdded},
		{"followers_removed", r.repo.RemoveOrphanFollowers, &report.FollowersRemoved},
		{"dangling_favorites", r.repo.RemoveDanglingFavorites, &report.DanglingFavorites},
		{"favorite_counts", r.recountFavorites, &report.FavoriteCountsFixed},
		{"own_recipe_counts", r.repo.RecountOwnRecipes, &report.OwnRecipeCountsFixed},
	}
	for _, step := range steps {
		n, err := step.run(ctx)
		if err != nil {
			return r.done(report, fmt.Errorf("%s: %w", step.kind, err))
		}
		*step.into = n
		if n > 0 {
			metrics.ReconcilerRepairs.WithLabelValues(step.kind).Add(float64(n))
		}
	}

	return r.done(report, nil)
}

func (r *reconciler) done(report domain.ReconcileReport, err error) (domain.ReconcileReport, error) {
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues("error").Inc()
		r.logger.Error("reconciliation failed", zap.Error(err))
		return report, err
	}
	metrics.ReconcilerRuns.WithLabelValues("ok").Inc()
	r.logger.Info("reconciliation finished",
		zap.Int64("intents_replayed", report.IntentsReplayed),
		zap.Int64("followers_added", report.FollowersAdded),
		zap.Int64("followers_removed", report.FollowersRemoved),
		zap.Int64("dangling_favorites", report.DanglingFavorites),
		zap.Int64("favorite_counts_fixed", report.FavoriteCountsFixed),
		zap.Int64("own_recipe_counts_fixed", report.OwnRecipeCountsFixed),
	)
	return report, nil
}

func (r *reconciler) replayIntents(ctx context.Context) (int64, error) {
	intents, err := r.repo.GetPendingIntents(ctx, r.now().Add(-r.grace), r.batch)
	if err != nil {
		return 0, err
	}

	var replayed int64
	for _, intent := range intents {
		if err := ctx.Err(); err != nil {
			return replayed, err
		}
		err := r.replay(ctx, intent)
		if errors.Is(err, errRecountDeferred) {
			continue
		}
		if err != nil {
			r.logger.Warn("intent replay failed",
				zap.String("intent_id", intent.ID.String()),
				zap.String("op", intent.Op),
				zap.Error(err),
			)
			if ferr := r.repo.FailIntent(ctx, intent.ID, err.Error()); ferr != nil {
				return replayed, ferr
			}
			continue
		}
		if err := r.repo.SetIntentStatus(ctx, intent.ID, entities.IntentStatusDone); err != nil {
			return replayed, err
		}
		replayed++
		metrics.ReconcilerRepairs.WithLabelValues("intents").Inc()
	}
	return replayed, nil
}

// replay completes the second side of an intent against the current state of
// the first side, so a later opposite mutation is never undone.
func (r *reconciler) replay(ctx context.Context, intent *entities.RelationIntent) error {
	actor, target := intent.ActorID, intent.TargetID

	switch intent.Op {
	case entities.IntentFollow, entities.IntentUnfollow:
		return r.repo.Transaction(ctx, func(tx RelationRepository) error {
			following, err := tx.IsFollowing(ctx, actor, target)
			if err != nil {
				return err
			}
			if following {
				_, err = tx.AddFollower(ctx, target, actor)
			} else {
				_, err = tx.RemoveFollower(ctx, target, actor)
			}
			return err
		})
	case entities.IntentFavorite, entities.IntentUnfavorite:
		_, err := r.recountFavorite(ctx, target)
		return err
	default:
		return errors.New("unknown intent op " + intent.Op)
	}
}

func (r *reconciler) recountFavorites(ctx context.Context) (int64, error) {
	ids, err := r.repo.DriftedFavoriteCounts(ctx)
	if err != nil {
		return 0, err
	}

	var fixed int64
	for _, id := range ids {
		ok, err := r.recountFavorite(ctx, id)
		if errors.Is(err, errRecountDeferred) {
			continue
		}
		if err != nil {
			return fixed, err
		}
		if ok {
			fixed++
		}
	}
	return fixed, nil
}

// recountFavorite sets a recipe's counter from its favorite set while holding
// the recipe row lock, so a concurrent AdjustFavoriteCount either lands
// before the count or waits and applies on top of it.
//
// In intent-log mode the favorite row commits before the counter moves. The
// intent is recorded before the favorite row, so when the count can see a
// favorite whose increment is still pending, the check after it sees the
// young intent and the recount is rolled back.
func (r *reconciler) recountFavorite(ctx context.Context, recipeID uuid.UUID) (bool, error) {
	inFlightSince := r.now().Add(-r.grace)

	var fixed bool
	err := r.repo.Transaction(ctx, func(tx RelationRepository) error {
		found, err := tx.LockRecipe(ctx, recipeID)
		if err != nil || !found {
			return err
		}
		if fixed, err = tx.RecountFavoriteCount(ctx, recipeID); err != nil {
			return err
		}
		busy, err := tx.HasFavoriteIntentSince(ctx, recipeID, inFlightSince)
		if err != nil {
			return err
		}
		if busy {
			return errRecountDeferred
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return fixed, nil
}
