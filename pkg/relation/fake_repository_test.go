package relation

import (
	"context"
	"maps"
	"sync"
	"time"

	"foodies-api/entities"

	"github.com/google/uuid"
)

type pair struct{ a, b uuid.UUID }

type fakeState struct {
	followings map[pair]bool
	followers  map[pair]bool
	favorites  map[pair]bool
	counts     map[uuid.UUID]int64
}

func (s fakeState) clone() fakeState {
	return fakeState{
		followings: maps.Clone(s.followings),
		followers:  maps.Clone(s.followers),
		favorites:  maps.Clone(s.favorites),
		counts:     maps.Clone(s.counts),
	}
}

// fakeRepo is an in-memory RelationRepository. Each method is atomic like a
// single SQL statement; Transaction serializes and rolls back on error.
type fakeRepo struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	users   map[uuid.UUID]bool
	state   fakeState
	intents map[uuid.UUID]*entities.RelationIntent
	fail    map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: map[uuid.UUID]bool{},
		state: fakeState{
			followings: map[pair]bool{},
			followers:  map[pair]bool{},
			favorites:  map[pair]bool{},
			counts:     map[uuid.UUID]int64{},
		},
		intents: map[uuid.UUID]*entities.RelationIntent{},
		fail:    map[string]error{},
	}
}

func (f *fakeRepo) addUser() uuid.UUID {
	id := uuid.New()
	f.users[id] = true
	return id
}

func (f *fakeRepo) addRecipe() uuid.UUID {
	id := uuid.New()
	f.state.counts[id] = 0
	return id
}

func (f *fakeRepo) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *fakeRepo) clearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = map[string]error{}
}

func (f *fakeRepo) count(recipeID uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.counts[recipeID]
}

func (f *fakeRepo) hasFollowing(u, t uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.followings[pair{u, t}]
}

func (f *fakeRepo) hasFollower(u, follower uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.followers[pair{u, follower}]
}

func (f *fakeRepo) hasFavorite(u, r uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.favorites[pair{u, r}]
}

func (f *fakeRepo) onlyIntent() *entities.RelationIntent {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.intents {
		cp := *it
		return &cp
	}
	return nil
}

func (f *fakeRepo) Transaction(ctx context.Context, fn func(repo RelationRepository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snapshot := f.state.clone()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.state = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepo) lock(method string) (func(), error) {
	f.mu.Lock()
	if err := f.fail[method]; err != nil {
		f.mu.Unlock()
		return func() {}, err
	}
	return f.mu.Unlock, nil
}

func (f *fakeRepo) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	unlock, err := f.lock("UserExists")
	defer unlock()
	return f.users[id], err
}

func (f *fakeRepo) RecipeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	unlock, err := f.lock("RecipeExists")
	defer unlock()
	_, ok := f.state.counts[id]
	return ok, err
}

func (f *fakeRepo) IsFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	unlock, err := f.lock("IsFollowing")
	defer unlock()
	return f.state.followings[pair{userID, targetID}], err
}

func setAdd(set map[pair]bool, p pair) bool {
	if set[p] {
		return false
	}
	set[p] = true
	return true
}

func setRemove(set map[pair]bool, p pair) bool {
	if !set[p] {
		return false
	}
	delete(set, p)
	return true
}

func (f *fakeRepo) AddFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	unlock, err := f.lock("AddFollowing")
	defer unlock()
	if err != nil {
		return false, err
	}
	return setAdd(f.state.followings, pair{userID, targetID}), nil
}

func (f *fakeRepo) RemoveFollowing(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	unlock, err := f.lock("RemoveFollowing")
	defer unlock()
	if err != nil {
		return false, err
	}
	return setRemove(f.state.followings, pair{userID, targetID}), nil
}

func (f *fakeRepo) AddFollower(ctx context.Context, userID, followerID uuid.UUID) (bool, error) {
	unlock, err := f.lock("AddFollower")
	defer unlock()
	if err != nil {
		return false, err
	}
	return setAdd(f.state.followers, pair{userID, followerID}), nil
}

func (f *fakeRepo) RemoveFollower(ctx context.Context, userID, followerID uuid.UUID) (bool, error) {
	unlock, err := f.lock("RemoveFollower")
	defer unlock()
	if err != nil {
		return false, err
	}
	return setRemove(f.state.followers, pair{userID, followerID}), nil
}

func (f *fakeRepo) IsFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	unlock, err := f.lock("IsFavorite")
	defer unlock()
	return f.state.favorites[pair{userID, recipeID}], err
}

func (f *fakeRepo) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	unlock, err := f.lock("AddFavorite")
	defer unlock()
	if err != nil {
		return false, err
	}
	return setAdd(f.state.favorites, pair{userID, recipeID}), nil
}

func (f *fakeRepo) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	unlock, err := f.lock("RemoveFavorite")
	defer unlock()
	if err != nil {
		return false, err
	}
	return setRemove(f.state.favorites, pair{userID, recipeID}), nil
}

func (f *fakeRepo) AdjustFavoriteCount(ctx context.Context, recipeID uuid.UUID, delta int64) error {
	unlock, err := f.lock("AdjustFavoriteCount")
	defer unlock()
	if err != nil {
		return err
	}
	if _, ok := f.state.counts[recipeID]; ok {
		f.state.counts[recipeID] = max(f.state.counts[recipeID]+delta, 0)
	}
	return nil
}

func (f *fakeRepo) RemoveRecipeFavorites(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	unlock, err := f.lock("RemoveRecipeFavorites")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for p := range f.state.favorites {
		if p.b == recipeID {
			delete(f.state.favorites, p)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CreateIntent(ctx context.Context, intent *entities.RelationIntent) error {
	unlock, err := f.lock("CreateIntent")
	defer unlock()
	if err != nil {
		return err
	}
	cp := *intent
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.intents[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) SetIntentStatus(ctx context.Context, id uuid.UUID, status string) error {
	unlock, err := f.lock("SetIntentStatus")
	defer unlock()
	if err != nil {
		return err
	}
	if it, ok := f.intents[id]; ok {
		it.Status = status
	}
	return nil
}

func (f *fakeRepo) FailIntent(ctx context.Context, id uuid.UUID, reason string) error {
	unlock, err := f.lock("FailIntent")
	defer unlock()
	if err != nil {
		return err
	}
	if it, ok := f.intents[id]; ok {
		it.Attempts++
		it.LastErr = reason
	}
	return nil
}

func (f *fakeRepo) GetPendingIntents(ctx context.Context, olderThan time.Time, limit int) ([]*entities.RelationIntent, error) {
	unlock, err := f.lock("GetPendingIntents")
	defer unlock()
	if err != nil {
		return nil, err
	}
	var out []*entities.RelationIntent
	for _, it := range f.intents {
		if it.Status == entities.IntentStatusPending && it.CreatedAt.Before(olderThan) && len(out) < limit {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) AddMissingFollowers(ctx context.Context) (int64, error) {
	unlock, err := f.lock("AddMissingFollowers")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for p := range f.state.followings {
		if setAdd(f.state.followers, pair{p.b, p.a}) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) RemoveOrphanFollowers(ctx context.Context) (int64, error) {
	unlock, err := f.lock("RemoveOrphanFollowers")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for p := range f.state.followers {
		if !f.state.followings[pair{p.b, p.a}] {
			delete(f.state.followers, p)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) recount(recipeID uuid.UUID) int64 {
	var n int64
	for p := range f.state.favorites {
		if p.b == recipeID {
			n++
		}
	}
	return n
}

func (f *fakeRepo) DriftedFavoriteCounts(ctx context.Context) ([]uuid.UUID, error) {
	unlock, err := f.lock("DriftedFavoriteCounts")
	defer unlock()
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for id, count := range f.state.counts {
		if f.recount(id) != count {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// LockRecipe only reports existence; Transaction already serializes.
func (f *fakeRepo) LockRecipe(ctx context.Context, recipeID uuid.UUID) (bool, error) {
	unlock, err := f.lock("LockRecipe")
	defer unlock()
	_, ok := f.state.counts[recipeID]
	return ok, err
}

func (f *fakeRepo) RecountFavoriteCount(ctx context.Context, recipeID uuid.UUID) (bool, error) {
	unlock, err := f.lock("RecountFavoriteCount")
	defer unlock()
	if err != nil {
		return false, err
	}
	count, ok := f.state.counts[recipeID]
	if !ok {
		return false, nil
	}
	actual := f.recount(recipeID)
	f.state.counts[recipeID] = actual
	return actual != count, nil
}

func (f *fakeRepo) HasFavoriteIntentSince(ctx context.Context, recipeID uuid.UUID, since time.Time) (bool, error) {
	unlock, err := f.lock("HasFavoriteIntentSince")
	defer unlock()
	if err != nil {
		return false, err
	}
	for _, it := range f.intents {
		if it.TargetID == recipeID &&
			(it.Op == entities.IntentFavorite || it.Op == entities.IntentUnfavorite) &&
			it.Status == entities.IntentStatusPending &&
			!it.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) RemoveDanglingFavorites(ctx context.Context) (int64, error) {
	unlock, err := f.lock("RemoveDanglingFavorites")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for p := range f.state.favorites {
		if _, ok := f.state.counts[p.b]; !ok {
			delete(f.state.favorites, p)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) RecountOwnRecipes(ctx context.Context) (int64, error) {
	unlock, err := f.lock("RecountOwnRecipes")
	defer unlock()
	return 0, err
}
