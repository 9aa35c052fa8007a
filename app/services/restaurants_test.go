package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/mail"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

func TestSeedEmails(t *testing.T) {
	admin, kitchen := services.SeedEmails("  Trattoria Roma! ")
	assert.Equal(t, "admin@trattoria-roma.local", admin)
	assert.Equal(t, "kitchen@trattoria-roma.local", kitchen)

	admin, _ = services.SeedEmails("***")
	assert.Equal(t, "admin@restaurant.local", admin)
}

func TestBootstrapCreatesTwoSeedUsers(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRestaurantService(f.repos, f.notifier)

	res, err := svc.Bootstrap(f.ctx, services.RestaurantInput{Name: "Trattoria Roma", Email: "hello@roma.test"})
	require.NoError(t, err)
	require.Len(t, res.Users, 2)

	users, err := f.repos.Users.Find(f.ctx, bson.M{"restaurantId": res.Restaurant.ID}, docstore.SortBy("email"))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@trattoria-roma.local", users[0].Email)
	assert.Equal(t, tenant.Admin.String(), users[0].Role)
	assert.Equal(t, "kitchen@trattoria-roma.local", users[1].Email)
	assert.Equal(t, tenant.Kitchen.String(), users[1].Role)
	for _, u := range users {
		assert.Equal(t, res.Restaurant.ID, *u.RestaurantID)
		assert.True(t, u.Active)
	}

	defaults, err := f.repos.Units.Count(f.ctx, bson.M{"restaurantId": res.Restaurant.ID, "isDefault": true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, defaults)

	cats, err := f.repos.Categories.Count(f.ctx, bson.M{"restaurantId": res.Restaurant.ID})
	require.NoError(t, err)
	assert.Positive(t, cats)

	_, err = svc.Bootstrap(f.ctx, services.RestaurantInput{Name: "trattoria-roma"})
	assert.True(t, apperr.Is(err, apperr.EConflict))
}

func TestRestaurantDeleteBlockedByUsers(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRestaurantService(f.repos, f.notifier)

	res, err := svc.Bootstrap(f.ctx, services.RestaurantInput{Name: "Busy"})
	require.NoError(t, err)

	err = svc.Delete(f.ctx, res.Restaurant.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.EConflict))
	assert.Equal(t, int64(2), apperr.DetailsOf(err)["blockingUsers"])

	empty := f.restaurant(t, "empty")
	require.NoError(t, svc.Delete(f.ctx, empty.ID.Hex()))
}

func TestEmailSettingsKeepPasswordAndResetTransport(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t, "roma")
	svc := services.NewRestaurantService(f.repos, f.notifier)
	scope := scopeOf(r.ID, tenant.Admin)

	stale := &mail.Recorder{}
	f.mail.Set(r.ID.Hex(), stale)

	updated, err := svc.UpdateEmailSettings(f.ctx, scope, services.EmailSettingsInput{
		FromName: "Roma", FromAddress: "orders@roma.test", SMTPUser: "roma", SMTPPort: 465, Secure: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "p", updated.EmailConfig.SMTPPassword)
	assert.Equal(t, 465, updated.EmailConfig.SMTPPort)

	require.NoError(t, svc.SendTestEmail(f.ctx, scope, "me@roma.test"))
	assert.Empty(t, stale.Sent())
}

func TestSendTestEmailRequiresTenant(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRestaurantService(f.repos, f.notifier)

	err := svc.SendTestEmail(f.ctx, tenant.Decision{Role: tenant.Admin, Unassigned: true}, "me@x.test")
	assert.True(t, apperr.Is(err, apperr.EConfiguration))
}

// kitchenFailStore rejects inserts of kitchen accounts.
type kitchenFailStore struct{ docstore.Store }

func (s kitchenFailStore) Collection(name string) docstore.Collection {
	c := s.Store.Collection(name)
	if name == repositories.UsersCollection {
		return kitchenFailCollection{c}
	}
	return c
}

type kitchenFailCollection struct{ docstore.Collection }

func (c kitchenFailCollection) InsertOne(ctx context.Context, doc bson.M) error {
	if email, _ := doc["email"].(string); strings.HasPrefix(email, "kitchen@") {
		return errors.New("write refused")
	}
	return c.Collection.InsertOne(ctx, doc)
}

func TestBootstrapRemovesPartialWritesWhenSeedingFails(t *testing.T) {
	f := newFixture(t)
	store := docstore.NewMemory()
	require.NoError(t, repositories.EnsureIndexes(f.ctx, store))
	repos := repositories.New(kitchenFailStore{store})
	svc := services.NewRestaurantService(repos, f.notifier)

	_, err := svc.Bootstrap(f.ctx, services.RestaurantInput{Name: "Half Built"})
	require.Error(t, err)

	restaurants, err := repos.Restaurants.Count(f.ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, restaurants)

	users, err := repos.Users.Count(f.ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, users)

	units, err := repos.Units.Count(f.ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, units)
}
