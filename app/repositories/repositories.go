// Package repositories binds each model to its collection.
package repositories

import (
	"context"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
)

const (
	RestaurantsCollection = "restaurants"
	UsersCollection       = "users"
	SuppliersCollection   = "suppliers"
	CategoriesCollection  = "categories"
	ItemsCollection       = "items"
	OrdersCollection      = "orders"
	UnitsCollection       = "units"
)

// Repositories holds one typed repository per collection.
type Repositories struct {
	Restaurants *docstore.Repo[models.Restaurant]
	Users       *docstore.Repo[models.User]
	Suppliers   *docstore.Repo[models.Supplier]
	Categories  *docstore.Repo[models.Category]
	Items       *docstore.Repo[models.Item]
	Orders      *docstore.Repo[models.Order]
	Units       *docstore.Repo[models.Unit]
}

func New(store docstore.Store) *Repositories {
	return &Repositories{
		Restaurants: docstore.NewRepo[models.Restaurant](store, RestaurantsCollection, "Restaurant"),
		Users:       docstore.NewRepo[models.User](store, UsersCollection, "User"),
		Suppliers:   docstore.NewRepo[models.Supplier](store, SuppliersCollection, "Supplier"),
		Categories:  docstore.NewRepo[models.Category](store, CategoriesCollection, "Category"),
		Items:       docstore.NewRepo[models.Item](store, ItemsCollection, "Item"),
		Orders:      docstore.NewRepo[models.Order](store, OrdersCollection, "Order"),
		Units:       docstore.NewRepo[models.Unit](store, UnitsCollection, "Unit"),
	}
}

// Indexes lists the indexes the service relies on.
func Indexes() []docstore.Index {
	return []docstore.Index{
		{Collection: UsersCollection, Fields: []string{"email"}, Unique: true},
		{Collection: UsersCollection, Fields: []string{"restaurantId"}},
		{Collection: SuppliersCollection, Fields: []string{"restaurantId", "name"}},
		{Collection: CategoriesCollection, Fields: []string{"restaurantId", "name"}},
		{Collection: ItemsCollection, Fields: []string{"restaurantId", "name"}},
		{Collection: ItemsCollection, Fields: []string{"restaurantId", "categoryId"}},
		{Collection: OrdersCollection, Fields: []string{"restaurantId", "createdAt"}},
		{Collection: UnitsCollection, Fields: []string{"restaurantId", "name"}, Unique: true},
		{Collection: UnitsCollection, Fields: []string{"restaurantId", "abbreviation"}, Unique: true},
	}
}

// EnsureIndexes creates Indexes on store.
func EnsureIndexes(ctx context.Context, store docstore.Store) error {
	return store.EnsureIndexes(ctx, Indexes()...)
}
