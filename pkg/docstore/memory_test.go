package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
)

type widget struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	RestaurantID primitive.ObjectID `bson:"restaurantId"`
	Name         string             `bson:"name"`
	Days         []string           `bson:"days"`
	Active       bool               `bson:"active"`
	Qty          int                `bson:"qty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func newRepo(t *testing.T) *docstore.Repo[widget] {
	t.Helper()
	store := docstore.NewMemory()
	require.NoError(t, store.EnsureIndexes(context.Background(), docstore.Index{
		Collection: "widgets", Fields: []string{"restaurantId", "name"}, Unique: true,
	}))
	return docstore.NewRepo[widget](store, "widgets", "Widget")
}

func TestInsertAssignsID(t *testing.T) {
	repo := newRepo(t)
	w := widget{Name: "flour", RestaurantID: primitive.NewObjectID()}

	require.NoError(t, repo.Insert(context.Background(), &w))
	assert.False(t, w.ID.IsZero())

	got, err := repo.FindOne(context.Background(), bson.M{"_id": w.ID})
	require.NoError(t, err)
	assert.Equal(t, "flour", got.Name)
}

func TestFindFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	r1, r2 := primitive.NewObjectID(), primitive.NewObjectID()

	for _, w := range []widget{
		{RestaurantID: r1, Name: "sugar", Days: []string{"monday"}, Active: true, Qty: 2},
		{RestaurantID: r1, Name: "butter", Days: []string{"tuesday"}, Active: true, Qty: 1},
		{RestaurantID: r1, Name: "eggs", Days: []string{"monday", "friday"}, Active: false, Qty: 3},
		{RestaurantID: r2, Name: "apples", Days: []string{"monday"}, Active: true},
	} {
		w := w
		require.NoError(t, repo.Insert(ctx, &w))
	}

	all, err := repo.Find(ctx, bson.M{"restaurantId": r1}, docstore.SortBy("name"))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"butter", "eggs", "sugar"}, []string{all[0].Name, all[1].Name, all[2].Name})

	monday, err := repo.Find(ctx, bson.M{"restaurantId": r1, "days": "monday", "active": true}, docstore.Query{})
	require.NoError(t, err)
	require.Len(t, monday, 1)
	assert.Equal(t, "sugar", monday[0].Name)

	in, err := repo.Find(ctx, bson.M{"_id": bson.M{"$in": []primitive.ObjectID{all[0].ID, all[2].ID}}}, docstore.SortBy("name"))
	require.NoError(t, err)
	assert.Len(t, in, 2)

	n, err := repo.Count(ctx, bson.M{"restaurantId": r1, "name": bson.M{"$ne": "eggs"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	byQty, err := repo.Find(ctx, bson.M{"restaurantId": r1}, docstore.Newest("qty", 2))
	require.NoError(t, err)
	require.Len(t, byQty, 2)
	assert.Equal(t, "eggs", byQty[0].Name)
}

func TestUniqueIndexRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rid := primitive.NewObjectID()

	require.NoError(t, repo.Insert(ctx, &widget{RestaurantID: rid, Name: "kg"}))
	err := repo.Insert(ctx, &widget{RestaurantID: rid, Name: "kg"})
	require.True(t, apperr.Is(err, apperr.EInvalid))
	assert.True(t, errors.Is(err, docstore.ErrDuplicate))
	assert.Equal(t, "The name has already been taken.", apperr.DetailsOf(err)["name"])

	require.NoError(t, repo.Insert(ctx, &widget{RestaurantID: primitive.NewObjectID(), Name: "kg"}))
}

func TestReplaceUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rid := primitive.NewObjectID()

	w := widget{RestaurantID: rid, Name: "salt"}
	require.NoError(t, repo.Insert(ctx, &w))

	w.Name = "sea salt"
	require.NoError(t, repo.Replace(ctx, bson.M{"_id": w.ID, "restaurantId": rid}, &w))

	err := repo.Replace(ctx, bson.M{"_id": w.ID, "restaurantId": primitive.NewObjectID()}, &w)
	assert.True(t, apperr.Is(err, apperr.ENotFound))

	n, err := repo.UpdateMany(ctx, bson.M{"restaurantId": rid}, bson.M{"active": true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.FindOne(ctx, bson.M{"_id": w.ID})
	require.NoError(t, err)
	assert.Equal(t, "sea salt", got.Name)
	assert.True(t, got.Active)

	require.NoError(t, repo.Delete(ctx, bson.M{"_id": w.ID}))
	_, err = repo.FindOne(ctx, bson.M{"_id": w.ID})
	assert.Equal(t, "Widget not found", apperr.Message(err))
}
