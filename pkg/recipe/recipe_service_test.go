package recipe

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"foodies-api/domain"
	"foodies-api/entities"
	"foodies-api/pkg/identity"
	"foodies-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedFixture struct {
	repo    *fakeRecipeRepo
	ledger  *fakeLedger
	storage *fakeStorage
	svc     RecipeService
	owner   *entities.User
	dessert uuid.UUID
	british uuid.UUID
}

func newFeedFixture() *feedFixture {
	repo := newFakeRecipeRepo()
	f := &feedFixture{
		repo:    repo,
		ledger:  &fakeLedger{repo: repo},
		storage: &fakeStorage{},
		owner:   repo.addUser("Ann"),
		dessert: repo.addCategory("Dessert"),
		british: repo.addArea("British"),
	}
	f.svc = NewRecipeService(repo, f.ledger, f.storage, nil)
	return f
}

func viewerOf(user *entities.User, favorites ...uuid.UUID) *identity.Viewer {
	return identity.NewViewer(user, "token", favorites)
}

func TestListRecipes_DessertPagination(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	beef := f.repo.addCategory("Beef")
	for i := 0; i < 5; i++ {
		f.repo.addRecipe("cake", f.owner.ID, &f.dessert, &f.british)
	}
	f.repo.addRecipe("stew", f.owner.ID, &beef, &f.british)

	filter := domain.RecipeFilter{Category: "Dessert"}
	seen := map[string]bool{}
	for page, want := range map[int]int{1: 2, 2: 2, 3: 1, 4: 0} {
		res, err := f.svc.ListRecipes(ctx, filter, pagination.New(page, 2), nil)
		require.NoError(t, err)
		assert.EqualValues(t, 5, res.Total)
		assert.Equal(t, page, res.Page)
		assert.Equal(t, 2, res.Limit)
		assert.Len(t, res.Result, want, "page %d", page)
		for _, item := range res.Result {
			assert.Equal(t, "Dessert", item.Category)
			assert.False(t, seen[item.ID], "recipe %s on two pages", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestListRecipes_Filters(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	italian := f.repo.addArea("Italian")
	sugar := f.repo.addIngredient("Sugar")
	flour := f.repo.addIngredient("Flour")
	f.repo.addRecipe("tart", f.owner.ID, &f.dessert, &f.british, sugar, flour)
	f.repo.addRecipe("panna cotta", f.owner.ID, &f.dessert, &italian, sugar)
	f.repo.addRecipe("bread", f.owner.ID, nil, &italian, flour)

	res, err := f.svc.ListRecipes(ctx, domain.RecipeFilter{Area: "Italian", Ingredient: sugar.String()}, pagination.New(1, 20), nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, "panna cotta", res.Result[0].Title)

	res, err = f.svc.ListRecipes(ctx, domain.RecipeFilter{Ingredient: flour.String()}, pagination.New(1, 20), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	res, err = f.svc.ListRecipes(ctx, domain.RecipeFilter{Category: "Seafood"}, pagination.New(1, 20), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Result)
	assert.Empty(t, res.Result)

	_, err = f.svc.ListRecipes(ctx, domain.RecipeFilter{Ingredient: "sugar"}, pagination.New(1, 20), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListRecipes_AnonymousParity(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	a := f.repo.addRecipe("a", f.owner.ID, &f.dessert, nil)
	f.repo.addRecipe("b", f.owner.ID, &f.dessert, nil)

	failed := identity.Result{Status: identity.Invalid, Err: domain.ErrTokenInvalid}
	anonymous, err := f.svc.ListRecipes(ctx, domain.RecipeFilter{}, pagination.New(1, 20), nil)
	require.NoError(t, err)
	invalid, err := f.svc.ListRecipes(ctx, domain.RecipeFilter{}, pagination.New(1, 20), failed.Personalization())
	require.NoError(t, err)
	assert.Equal(t, anonymous, invalid)
	for _, item := range anonymous.Result {
		assert.False(t, item.Favorite)
	}

	resolved, err := f.svc.ListRecipes(ctx, domain.RecipeFilter{}, pagination.New(1, 20), viewerOf(f.owner, a.ID))
	require.NoError(t, err)
	for _, item := range resolved.Result {
		assert.Equal(t, item.ID == a.ID.String(), item.Favorite)
	}
}

func TestGetRecipe_DegradesOnDanglingReferences(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	sugar := f.repo.addIngredient("Sugar")
	gone := uuid.New()
	flour := f.repo.addIngredient("Flour")
	r := f.repo.addRecipe("tart", f.owner.ID, &f.dessert, &f.british, sugar, gone, flour)

	got, err := f.svc.GetRecipe(ctx, r.ID.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Dessert", got.Category)
	assert.Equal(t, "British", got.Area)
	assert.Equal(t, "Ann", got.Owner.Name)
	assert.False(t, got.Favorite)
	require.Len(t, got.Ingredients, 3)
	assert.Equal(t, "Sugar", got.Ingredients[0].Name)
	assert.Equal(t, domain.RecipeIngredientDetail{ID: gone.String(), Measure: "1 cup"}, got.Ingredients[1])
	assert.Equal(t, "Flour", got.Ingredients[2].Name)

	orphan := f.repo.addRecipe("orphan", uuid.New(), nil, nil)
	got, err = f.svc.GetRecipe(ctx, orphan.ID.String(), viewerOf(f.owner, orphan.ID))
	require.NoError(t, err)
	assert.Empty(t, got.Owner.Name)
	assert.Empty(t, got.Category)
	assert.True(t, got.Favorite)
	assert.NotNil(t, got.Ingredients)

	_, err = f.svc.GetRecipe(ctx, uuid.NewString(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.GetRecipe(ctx, "nope", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetPopularRecipes(t *testing.T) {
	f := newFeedFixture()
	for i, count := range []int64{3, 9, 0, 5, 7, 1} {
		r := f.repo.addRecipe(string(rune('a'+i)), f.owner.ID, nil, nil)
		r.FavoriteCount = count
	}

	got, err := f.svc.GetPopularRecipes(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, domain.PopularRecipesLimit)
	var counts []int64
	for _, item := range got {
		counts = append(counts, item.FavoriteCount)
	}
	assert.Equal(t, []int64{9, 7, 5, 3}, counts)
}

func TestFavoriteRecipe_ReturnsUpdatedRecipe(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	r := f.repo.addRecipe("tart", f.owner.ID, nil, nil)
	bob := f.repo.addUser("Bob")

	got, err := f.svc.FavoriteRecipe(ctx, r.ID.String(), viewerOf(f.owner))
	require.NoError(t, err)
	assert.True(t, got.Favorite)
	assert.EqualValues(t, 1, got.FavoriteCount)

	got, err = f.svc.FavoriteRecipe(ctx, r.ID.String(), viewerOf(bob))
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.FavoriteCount)

	got, err = f.svc.UnfavoriteRecipe(ctx, r.ID.String(), viewerOf(f.owner, r.ID))
	require.NoError(t, err)
	assert.False(t, got.Favorite)
	assert.EqualValues(t, 1, got.FavoriteCount)

	got, err = f.svc.UnfavoriteRecipe(ctx, r.ID.String(), viewerOf(f.owner))
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.FavoriteCount)

	_, err = f.svc.FavoriteRecipe(ctx, r.ID.String(), nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.FavoriteRecipe(ctx, uuid.NewString(), viewerOf(bob))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	favs, err := f.svc.GetFavoriteRecipes(ctx, viewerOf(bob), pagination.New(1, 20))
	require.NoError(t, err)
	require.EqualValues(t, 1, favs.Total)
	assert.True(t, favs.Result[0].Favorite)
}

func newCreateRequest(category, area uuid.UUID, ingredients ...uuid.UUID) domain.CreateRecipeRequest {
	req := domain.CreateRecipeRequest{
		Title:        "Tart",
		Category:     category.String(),
		Area:         area.String(),
		Instructions: "bake",
		Description:  "sweet",
		Time:         "40",
		Thumb:        &multipart.FileHeader{Filename: "tart.jpg"},
	}
	for _, id := range ingredients {
		req.Ingredients = append(req.Ingredients, domain.IngredientMeasure{ID: id.String(), Measure: "100g"})
	}
	return req
}

func TestAddRecipe(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	sugar := f.repo.addIngredient("Sugar")
	flour := f.repo.addIngredient("Flour")

	got, err := f.svc.AddRecipe(ctx, newCreateRequest(f.dessert, f.british, flour, sugar), f.owner.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Dessert", got.Category)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "Flour", got.Ingredients[0].Name)
	assert.Equal(t, "Sugar", got.Ingredients[1].Name)
	require.NotNil(t, got.Thumb)
	assert.Equal(t, "https://cdn.foodies.test/recipes/"+got.ID+".jpg", *got.Thumb)
	assert.EqualValues(t, 1, f.owner.OwnRecipesCount)

	_, err = f.svc.AddRecipe(ctx, newCreateRequest(f.dessert, f.british, uuid.New()), f.owner.ID.String())
	assert.ErrorIs(t, err, domain.ErrUnknownIngredient)
	_, err = f.svc.AddRecipe(ctx, newCreateRequest(uuid.New(), f.british, sugar), f.owner.ID.String())
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	noThumb := newCreateRequest(f.dessert, f.british, sugar)
	noThumb.Thumb = nil
	_, err = f.svc.AddRecipe(ctx, noThumb, f.owner.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.repo.failCreate = errors.New("insert failed")
	_, err = f.svc.AddRecipe(ctx, newCreateRequest(f.dessert, f.british, sugar), f.owner.ID.String())
	require.Error(t, err)
	assert.Len(t, f.storage.deleted, 1)
	assert.EqualValues(t, 1, f.owner.OwnRecipesCount)
}

func TestDeleteRecipe(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	bob := f.repo.addUser("Bob")
	r := f.repo.addRecipe("tart", f.owner.ID, nil, nil)
	thumb := "https://cdn.foodies.test/recipes/tart.jpg"
	r.Thumb = &thumb
	f.owner.OwnRecipesCount = 1

	err := f.svc.DeleteRecipe(ctx, r.ID.String(), bob.ID.String())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.svc.DeleteRecipe(ctx, r.ID.String(), f.owner.ID.String()))
	assert.Equal(t, []uuid.UUID{r.ID}, f.ledger.forgotten)
	assert.Equal(t, []string{"recipes/tart.jpg"}, f.storage.deleted)
	assert.Zero(t, f.owner.OwnRecipesCount)

	err = f.svc.DeleteRecipe(ctx, r.ID.String(), f.owner.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMyAndUserRecipes(t *testing.T) {
	f := newFeedFixture()
	ctx := context.Background()
	bob := f.repo.addUser("Bob")
	f.repo.addRecipe("mine", f.owner.ID, nil, nil)
	f.repo.addRecipe("his", bob.ID, nil, nil)

	mine, err := f.svc.GetMyRecipes(ctx, viewerOf(f.owner), pagination.New(1, 20))
	require.NoError(t, err)
	require.EqualValues(t, 1, mine.Total)
	assert.Equal(t, "mine", mine.Result[0].Title)

	his, err := f.svc.GetUserRecipes(ctx, bob.ID.String(), pagination.New(1, 20), nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, his.Total)
	assert.Equal(t, "Bob", his.Result[0].Owner.Name)
}
