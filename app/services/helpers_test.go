package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/mail"
	"github.com/shashiranjanraj/pantry/pkg/notification"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

type fixture struct {
	ctx      context.Context
	repos    *repositories.Repositories
	mail     *mail.Registry
	notifier *notification.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Discard()

	store := docstore.NewMemory()
	require.NoError(t, repositories.EnsureIndexes(context.Background(), store))
	reg := mail.NewRegistry(func(string, mail.SMTPConfig) (mail.Transport, error) { return &mail.Recorder{}, nil })

	return &fixture{
		ctx:      context.Background(),
		repos:    repositories.New(store),
		mail:     reg,
		notifier: notification.New(reg),
	}
}

func (f *fixture) restaurant(t *testing.T, name string) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{
		Name:   name,
		Active: true,
		EmailConfig: models.EmailConfig{
			FromName: name, FromAddress: "orders@" + name + ".test", SMTPUser: "u", SMTPPassword: "p",
		},
	}
	require.NoError(t, f.repos.Restaurants.Insert(f.ctx, r))
	return r
}

func (f *fixture) supplier(t *testing.T, rid primitive.ObjectID, name, email string) *models.Supplier {
	t.Helper()
	s := &models.Supplier{RestaurantID: rid, Name: name, Email: email}
	require.NoError(t, f.repos.Suppliers.Insert(f.ctx, s))
	return s
}

func (f *fixture) item(t *testing.T, rid, supplierID primitive.ObjectID, name, unit string) *models.Item {
	t.Helper()
	it := &models.Item{RestaurantID: rid, SupplierID: supplierID, Name: name, Unit: unit, Active: true, ActiveDays: models.Weekdays}
	require.NoError(t, f.repos.Items.Insert(f.ctx, it))
	return it
}

func scopeOf(rid primitive.ObjectID, role tenant.Role) tenant.Decision {
	return tenant.Decision{RestaurantID: rid.Hex(), Source: tenant.SourceHome, Role: role}
}
