package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/mail"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

func TestSubmitNotifiesEachSupplierOnce(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t, "roma")
	a := f.supplier(t, r.ID, "Alpha Farms", "alpha@x.test")
	b := f.supplier(t, r.ID, "Beta Dairy", "beta@x.test")
	x := f.item(t, r.ID, a.ID, "Tomatoes", "kg")
	y := f.item(t, r.ID, a.ID, "Basil", "bunch")
	z := f.item(t, r.ID, b.ID, "Mozzarella", "box")

	rec := &mail.Recorder{}
	f.mail.Set(r.ID.Hex(), rec)

	svc := services.NewOrderService(f.repos, f.notifier)
	res, err := svc.Submit(f.ctx, scopeOf(r.ID, tenant.Kitchen), "", services.OrderInput{
		Items: []services.OrderLineInput{
			{ItemID: x.ID.Hex(), Quantity: 3},
			{ItemID: y.ID.Hex(), Quantity: 1},
			{ItemID: z.ID.Hex(), Quantity: 2},
		},
		SupplierNotes: map[string]string{a.ID.Hex(): "deliver before 9am"},
	})
	require.NoError(t, err)

	assert.Len(t, res.Order.Items, 3)
	assert.Equal(t, models.OrderPending, res.Order.Status)
	assert.Equal(t, r.ID, res.Order.RestaurantID)
	assert.Len(t, res.Notifications.Sent, 2)
	assert.Empty(t, res.Notifications.Failed)

	sent := rec.Sent()
	require.Len(t, sent, 2)

	assert.Equal(t, []string{"alpha@x.test"}, sent[0].Recipients())
	assert.Contains(t, sent[0].Content(), `<td>Tomatoes</td><td align="right">3</td><td>kg</td>`)
	assert.Contains(t, sent[0].Content(), `<td>Basil</td><td align="right">1</td>`)
	assert.Contains(t, sent[0].Content(), "deliver before 9am")
	assert.NotContains(t, sent[0].Content(), "Mozzarella")

	assert.Equal(t, []string{"beta@x.test"}, sent[1].Recipients())
	assert.Contains(t, sent[1].Content(), `<td>Mozzarella</td><td align="right">2</td><td>box</td>`)
	assert.NotContains(t, sent[1].Content(), "deliver before 9am")
	assert.NotContains(t, sent[1].Content(), "Tomatoes")
}

func TestSubmitKeepsOrderWhenEveryNotificationFails(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t, "roma")
	a := f.supplier(t, r.ID, "Alpha", "alpha@x.test")
	b := f.supplier(t, r.ID, "Beta", "beta@x.test")
	x := f.item(t, r.ID, a.ID, "Flour", "kg")
	z := f.item(t, r.ID, b.ID, "Milk", "l")
	f.mail.Set(r.ID.Hex(), &mail.Recorder{Err: errors.New("connection refused")})

	svc := services.NewOrderService(f.repos, f.notifier)
	scope := scopeOf(r.ID, tenant.Kitchen)
	res, err := svc.Submit(f.ctx, scope, "", services.OrderInput{Items: []services.OrderLineInput{
		{ItemID: x.ID.Hex(), Quantity: 1},
		{ItemID: z.ID.Hex(), Quantity: 4, Unit: "bottle"},
	}})
	require.NoError(t, err)
	assert.Empty(t, res.Notifications.Sent)
	assert.Len(t, res.Notifications.Failed, 2)

	stored, err := svc.Get(f.ctx, scope, res.Order.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "bottle", stored.Items[1].Unit)
}

func TestSubmitWithIncompleteMailSettingsStillPersists(t *testing.T) {
	f := newFixture(t)
	r := &models.Restaurant{Name: "bare", Active: true}
	require.NoError(t, f.repos.Restaurants.Insert(f.ctx, r))
	a := f.supplier(t, r.ID, "Alpha", "alpha@x.test")
	x := f.item(t, r.ID, a.ID, "Flour", "kg")

	res, err := services.NewOrderService(f.repos, f.notifier).Submit(f.ctx, scopeOf(r.ID, tenant.Kitchen), "", services.OrderInput{
		Items: []services.OrderLineInput{{ItemID: x.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, res.Notifications.Failed, 1)
	assert.Contains(t, res.Notifications.Failed[0].Error, "missing fromName, fromAddress, username, password")

	n, err := f.repos.Orders.Count(f.ctx, bson.M{"_id": res.Order.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSubmitRejectsForeignAndInvalidLines(t *testing.T) {
	f := newFixture(t)
	r1 := f.restaurant(t, "one")
	r2 := f.restaurant(t, "two")
	foreign := f.item(t, r2.ID, f.supplier(t, r2.ID, "S", "s@x.test").ID, "Salt", "kg")

	svc := services.NewOrderService(f.repos, f.notifier)
	scope := scopeOf(r1.ID, tenant.Kitchen)

	_, err := svc.Submit(f.ctx, scope, "", services.OrderInput{Items: []services.OrderLineInput{{ItemID: foreign.ID.Hex(), Quantity: 1}}})
	assert.True(t, apperr.Is(err, apperr.EInvalid))

	_, err = svc.Submit(f.ctx, scope, "", services.OrderInput{Items: []services.OrderLineInput{{ItemID: foreign.ID.Hex(), Quantity: 0}}})
	assert.True(t, apperr.Is(err, apperr.EInvalid))
	assert.Contains(t, apperr.DetailsOf(err), "items.0.quantity")

	own := f.item(t, r1.ID, f.supplier(t, r1.ID, "T", "t@x.test").ID, "Pepper", "kg")
	_, err = svc.Submit(f.ctx, scope, "", services.OrderInput{Items: []services.OrderLineInput{
		{ItemID: own.ID.Hex(), Quantity: 1},
		{ItemID: own.ID.Hex(), Quantity: 2.5},
	}})
	assert.True(t, apperr.Is(err, apperr.EInvalid))
	assert.Equal(t, "The quantity must be a whole number.", apperr.DetailsOf(err)["items.1.quantity"])
	assert.NotContains(t, apperr.DetailsOf(err), "items.0.quantity")

	n, err := f.repos.Orders.Count(f.ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderListAndStatus(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t, "roma")
	x := f.item(t, r.ID, f.supplier(t, r.ID, "A", "a@x.test").ID, "Flour", "kg")
	f.mail.Set(r.ID.Hex(), &mail.Recorder{})

	svc := services.NewOrderService(f.repos, f.notifier)
	scope := scopeOf(r.ID, tenant.Admin)
	var last *models.Order
	for i := 0; i < 3; i++ {
		res, err := svc.Submit(f.ctx, scope, "", services.OrderInput{Items: []services.OrderLineInput{{ItemID: x.ID.Hex(), Quantity: float64(i + 1)}}})
		require.NoError(t, err)
		last = res.Order
	}

	list, err := svc.List(f.ctx, scope, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	updated, err := svc.UpdateStatus(f.ctx, scope, last.ID.Hex(), "delivered")
	require.NoError(t, err)
	assert.Equal(t, "delivered", updated.Status)

	other := f.restaurant(t, "other")
	_, err = svc.UpdateStatus(f.ctx, scopeOf(other.ID, tenant.Admin), last.ID.Hex(), "cancelled")
	assert.True(t, apperr.Is(err, apperr.ENotFound))
}
