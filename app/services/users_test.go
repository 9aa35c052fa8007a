package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/config"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/auth"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

func TestUserRoleRules(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t, "roma")
	svc := services.NewUserService(f.repos)
	scope := scopeOf(r.ID, tenant.Admin)

	admin, err := svc.Create(f.ctx, scope, services.Actor{Role: tenant.Superadmin}, services.CreateUserInput{
		Name: "Ada", Email: "ADA@roma.test", Password: "password1", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@roma.test", admin.Email)
	assert.Equal(t, r.ID, *admin.RestaurantID)

	actor := services.Actor{ID: admin.ID.Hex(), Role: tenant.Admin}

	_, err = svc.Create(f.ctx, scope, actor, services.CreateUserInput{Name: "Eve", Email: "eve@roma.test", Password: "password1", Role: "superadmin"})
	assert.True(t, apperr.Is(err, apperr.EForbidden))

	_, err = svc.Create(f.ctx, scope, actor, services.CreateUserInput{Name: "Dup", Email: "ADA@roma.test", Password: "password1", Role: "kitchen"})
	require.True(t, apperr.Is(err, apperr.EInvalid))
	assert.Equal(t, "The email has already been taken.", apperr.DetailsOf(err)["email"])

	cook, err := svc.Create(f.ctx, scope, actor, services.CreateUserInput{Name: "Cook", Email: "cook@roma.test", Password: "password1", Role: "kitchen"})
	require.NoError(t, err)

	super := "superadmin"
	_, err = svc.Update(f.ctx, scope, actor, cook.ID.Hex(), services.UpdateUserInput{Role: &super})
	assert.True(t, apperr.Is(err, apperr.EForbidden))

	kitchen := "kitchen"
	_, err = svc.Update(f.ctx, scope, actor, admin.ID.Hex(), services.UpdateUserInput{Role: &kitchen})
	assert.True(t, apperr.Is(err, apperr.EForbidden))

	_, err = svc.SetActive(f.ctx, scope, actor, admin.ID.Hex(), false)
	assert.True(t, apperr.Is(err, apperr.EForbidden))

	off, err := svc.SetActive(f.ctx, scope, actor, cook.ID.Hex(), false)
	require.NoError(t, err)
	assert.False(t, off.Active)
}

func TestLoginRules(t *testing.T) {
	f := newFixture(t)
	restaurants := services.NewRestaurantService(f.repos, f.notifier)
	res, err := restaurants.Bootstrap(f.ctx, services.RestaurantInput{Name: "Roma"})
	require.NoError(t, err)

	svc := services.NewAuthService(f.repos)

	out, err := svc.Login(f.ctx, services.LoginInput{Email: "admin@roma.local", Password: config.SeedPassword()})
	require.NoError(t, err)
	claims, err := auth.ValidateToken(out.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, res.Restaurant.ID.Hex(), claims.RestaurantID)

	_, err = svc.Login(f.ctx, services.LoginInput{Email: "admin@roma.local", Password: "wrong"})
	assert.True(t, apperr.Is(err, apperr.EUnauthorized))

	_, err = restaurants.SetActive(f.ctx, res.Restaurant.ID.Hex(), false)
	require.NoError(t, err)
	_, err = svc.Login(f.ctx, services.LoginInput{Email: "kitchen@roma.local", Password: config.SeedPassword()})
	assert.True(t, apperr.Is(err, apperr.EForbidden))
}
