package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/app"
	"github.com/shashiranjanraj/pantry/pkg/logger"
)

const DemoRestaurant = "Demo Kitchen"

// SeedDemo bootstraps a demo restaurant unless one with the same name exists.
func SeedDemo(ctx context.Context, a *app.Application) error {
	n, err := a.Repos.Restaurants.Count(ctx, bson.M{"name": DemoRestaurant})
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("demo restaurant already present")
		return nil
	}

	res, err := a.Services.Restaurants.Bootstrap(ctx, services.RestaurantInput{Name: DemoRestaurant})
	if err != nil {
		return err
	}
	for _, u := range res.Users {
		logger.Info("demo account created", "email", u.Email, "role", u.Role)
	}
	return nil
}
