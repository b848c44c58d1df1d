package recipe

import (
	"context"
	"mime/multipart"
	"sort"
	"sync"

	"foodies-api/domain"
	"foodies-api/entities"
	"foodies-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRecipeRepo struct {
	mu          sync.Mutex
	recipes     []*entities.Recipe
	users       map[uuid.UUID]*entities.User
	categories  map[uuid.UUID]string
	areas       map[uuid.UUID]string
	ingredients map[uuid.UUID]*entities.Ingredient
	favorites   map[uuid.UUID][]uuid.UUID
	failCreate  error
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{
		users:       map[uuid.UUID]*entities.User{},
		categories:  map[uuid.UUID]string{},
		areas:       map[uuid.UUID]string{},
		ingredients: map[uuid.UUID]*entities.Ingredient{},
		favorites:   map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeRecipeRepo) addUser(name string) *entities.User {
	u := &entities.User{ID: uuid.New(), Name: name}
	f.users[u.ID] = u
	return u
}

func (f *fakeRecipeRepo) addCategory(name string) uuid.UUID {
	id := uuid.New()
	f.categories[id] = name
	return id
}

func (f *fakeRecipeRepo) addArea(name string) uuid.UUID {
	id := uuid.New()
	f.areas[id] = name
	return id
}

func (f *fakeRecipeRepo) addIngredient(name string) uuid.UUID {
	id := uuid.New()
	f.ingredients[id] = &entities.Ingredient{ID: id, Name: name}
	return id
}

func (f *fakeRecipeRepo) addRecipe(title string, owner uuid.UUID, category, area *uuid.UUID, ingredients ...uuid.UUID) *entities.Recipe {
	r := &entities.Recipe{ID: uuid.New(), Title: title, OwnerID: owner, CategoryID: category, AreaID: area}
	for i, id := range ingredients {
		r.Ingredients = append(r.Ingredients, entities.RecipeIngredient{RecipeID: r.ID, Position: i, IngredientID: id, Measure: "1 cup"})
	}
	f.recipes = append(f.recipes, r)
	return r
}

func (f *fakeRecipeRepo) find(id uuid.UUID) *entities.Recipe {
	for _, r := range f.recipes {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeRecipeRepo) Transaction(ctx context.Context, fn func(repo RecipeRepository) error) error {
	f.mu.Lock()
	recipes := append([]*entities.Recipe(nil), f.recipes...)
	counts := map[uuid.UUID]int64{}
	for id, u := range f.users {
		counts[id] = u.OwnRecipesCount
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.recipes = recipes
		for id, c := range counts {
			f.users[id].OwnRecipesCount = c
		}
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRecipeRepo) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipes = append(f.recipes, recipe)
	return nil
}

func (f *fakeRecipeRepo) DeleteRecipe(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.recipes {
		if r.ID == id {
			f.recipes = append(f.recipes[:i:i], f.recipes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRecipeRepo) AdjustOwnRecipesCount(ctx context.Context, ownerID uuid.UUID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[ownerID]; ok {
		u.OwnRecipesCount = max(u.OwnRecipesCount+delta, 0)
	}
	return nil
}

func (f *fakeRecipeRepo) GetRecipeByID(ctx context.Context, id uuid.UUID) (*entities.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.find(id)
	if r == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func matches(q RecipeQuery, r *entities.Recipe) bool {
	if q.CategoryID != nil && (r.CategoryID == nil || *r.CategoryID != *q.CategoryID) {
		return false
	}
	if q.AreaID != nil && (r.AreaID == nil || *r.AreaID != *q.AreaID) {
		return false
	}
	if q.OwnerID != nil && r.OwnerID != *q.OwnerID {
		return false
	}
	if q.IngredientID != nil {
		for _, in := range r.Ingredients {
			if in.IngredientID == *q.IngredientID {
				return true
			}
		}
		return false
	}
	return true
}

func window(all []*entities.Recipe, p pagination.Params) []*entities.Recipe {
	var out []*entities.Recipe
	for i := p.Offset(); i < len(all) && len(out) < p.Limit; i++ {
		out = append(out, all[i])
	}
	return out
}

func (f *fakeRecipeRepo) FindRecipes(ctx context.Context, q RecipeQuery, p pagination.Params) ([]*entities.Recipe, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*entities.Recipe
	for _, r := range f.recipes {
		if matches(q, r) {
			all = append(all, r)
		}
	}
	return window(all, p), int64(len(all)), nil
}

func (f *fakeRecipeRepo) GetPopularRecipes(ctx context.Context, limit int) ([]*entities.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := append([]*entities.Recipe(nil), f.recipes...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].FavoriteCount > all[j].FavoriteCount })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeRecipeRepo) GetFavoriteRecipes(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]*entities.Recipe, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*entities.Recipe
	for _, id := range f.favorites[userID] {
		if r := f.find(id); r != nil {
			all = append(all, r)
		}
	}
	return window(all, p), int64(len(all)), nil
}

func findByName(names map[uuid.UUID]string, name string) (uuid.UUID, bool, error) {
	for id, n := range names {
		if n == name {
			return id, true, nil
		}
	}
	return uuid.Nil, false, nil
}

func (f *fakeRecipeRepo) FindCategoryIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	return findByName(f.categories, name)
}

func (f *fakeRecipeRepo) FindAreaIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	return findByName(f.areas, name)
}

func (f *fakeRecipeRepo) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.categories[id]
	return ok, nil
}

func (f *fakeRecipeRepo) AreaExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.areas[id]
	return ok, nil
}

func (f *fakeRecipeRepo) CountIngredients(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := f.ingredients[id]; ok {
			n++
		}
	}
	return n, nil
}

func pick(names map[uuid.UUID]string, ids []uuid.UUID) map[uuid.UUID]string {
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if n, ok := names[id]; ok {
			out[id] = n
		}
	}
	return out
}

func (f *fakeRecipeRepo) GetCategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return pick(f.categories, ids), nil
}

func (f *fakeRecipeRepo) GetAreaNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return pick(f.areas, ids), nil
}

func (f *fakeRecipeRepo) GetOwners(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.User, error) {
	out := map[uuid.UUID]*entities.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) GetIngredients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Ingredient, error) {
	out := map[uuid.UUID]*entities.Ingredient{}
	for _, id := range ids {
		if in, ok := f.ingredients[id]; ok {
			out[id] = in
		}
	}
	return out, nil
}

// fakeLedger applies favorites straight to the fake repository.
type fakeLedger struct {
	repo      *fakeRecipeRepo
	forgotten []uuid.UUID
}

func (l *fakeLedger) Follow(ctx context.Context, actorID, targetID string) error   { return nil }
func (l *fakeLedger) Unfollow(ctx context.Context, actorID, targetID string) error { return nil }

func (l *fakeLedger) Favorite(ctx context.Context, actorID, recipeID string) error {
	l.repo.mu.Lock()
	defer l.repo.mu.Unlock()
	id, err := domain.ParseID(recipeID)
	if err != nil {
		return err
	}
	r := l.repo.find(id)
	if r == nil {
		return domain.ErrRecipeNotFound
	}
	actor := uuid.MustParse(actorID)
	for _, fav := range l.repo.favorites[actor] {
		if fav == id {
			return nil
		}
	}
	l.repo.favorites[actor] = append(l.repo.favorites[actor], id)
	r.FavoriteCount++
	return nil
}

func (l *fakeLedger) Unfavorite(ctx context.Context, actorID, recipeID string) error {
	l.repo.mu.Lock()
	defer l.repo.mu.Unlock()
	id, err := domain.ParseID(recipeID)
	if err != nil {
		return err
	}
	actor := uuid.MustParse(actorID)
	favs := l.repo.favorites[actor]
	for i, fav := range favs {
		if fav == id {
			l.repo.favorites[actor] = append(favs[:i:i], favs[i+1:]...)
			if r := l.repo.find(id); r != nil && r.FavoriteCount > 0 {
				r.FavoriteCount--
			}
			return nil
		}
	}
	return nil
}

func (l *fakeLedger) ForgetRecipe(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	l.forgotten = append(l.forgotten, recipeID)
	return 0, nil
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (s *fakeStorage) UploadFile(fileName string, file *multipart.FileHeader, folder string, allowTypes ...string) (string, error) {
	key := folder + "/" + fileName + ".jpg"
	s.uploaded = append(s.uploaded, key)
	return key, nil
}

func (s *fakeStorage) UpdateFile(objectKey string, file *multipart.FileHeader, allowTypes ...string) (string, error) {
	return objectKey, nil
}

func (s *fakeStorage) DeleteFile(objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func (s *fakeStorage) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.foodies.test/" + objectKey
}

func (s *fakeStorage) GetObjectKeyFromLink(link string) string {
	const prefix = "https://cdn.foodies.test/"
	if len(link) > len(prefix) && link[:len(prefix)] == prefix {
		return link[len(prefix):]
	}
	return ""
}
