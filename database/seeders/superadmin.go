package seeders

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/pantry/app/models"
	"github.com/shashiranjanraj/pantry/config"
	"github.com/shashiranjanraj/pantry/pkg/app"
	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/auth"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

func init() {
	Register("superadmin", SeedSuperadmin)
	Register("demo", SeedDemo)
}

// SeedSuperadmin creates the platform account named by SUPERADMIN_EMAIL and
// SUPERADMIN_PASSWORD. An existing account is left untouched.
func SeedSuperadmin(ctx context.Context, a *app.Application) error {
	email := strings.ToLower(strings.TrimSpace(config.SuperadminEmail()))
	password := config.SuperadminPassword()
	if email == "" || password == "" {
		logger.Warn("superadmin seeder skipped: SUPERADMIN_EMAIL or SUPERADMIN_PASSWORD unset")
		return nil
	}

	_, err := a.Repos.Users.FindOne(ctx, bson.M{"email": email})
	switch {
	case err == nil:
		logger.Info("superadmin already present", "email", email)
		return nil
	case apperr.Code(err) != apperr.ENotFound:
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	ts := time.Now().UTC()
	return a.Repos.Users.Insert(ctx, &models.User{
		Name:      "Platform Admin",
		Email:     email,
		Password:  hash,
		Role:      tenant.Superadmin.String(),
		Active:    true,
		CreatedAt: ts,
		UpdatedAt: ts,
	})
}
