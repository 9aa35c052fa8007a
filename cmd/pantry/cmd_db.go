package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/pantry/app/repositories"
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/database/seeders"
	"github.com/shashiranjanraj/pantry/pkg/app"
	"github.com/shashiranjanraj/pantry/pkg/database"
)

var seedDemo bool

// pantry seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the superadmin account (and a demo restaurant with --demo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.New(ctx, app.WithCache(nil))
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		names := []string{"superadmin"}
		if seedDemo {
			names = append(names, "demo")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.Run(ctx, a, cmd.OutOrStdout(), names...)
	},
}

// pantry db:indexes
var indexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create the document store indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := database.Open(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		if err := repositories.EnsureIndexes(ctx, store); err != nil {
			return err
		}
		for _, idx := range repositories.Indexes() {
			fmt.Fprintf(cmd.OutOrStdout(), "  • %s %v unique=%t\n", idx.Collection, idx.Fields, idx.Unique)
		}
		return nil
	},
}

var restaurantName string

// pantry restaurant:create --name "..."
var restaurantCreateCmd = &cobra.Command{
	Use:   "restaurant:create",
	Short: "Bootstrap a restaurant with its admin and kitchen accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(restaurantName) == "" {
			return errors.New("--name must not be empty")
		}

		ctx := cmd.Context()
		a, err := app.New(ctx, app.WithCache(nil))
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		res, err := a.Services.Restaurants.Bootstrap(ctx, services.RestaurantInput{Name: restaurantName})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Restaurant\t%s\t%s\n", res.Restaurant.Name, res.Restaurant.ID.Hex())
		for _, u := range res.Users {
			fmt.Fprintf(w, "%s\t%s\n", u.Role, u.Email)
		}
		return w.Flush()
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "also bootstrap a demo restaurant")

	restaurantCreateCmd.Flags().StringVar(&restaurantName, "name", "", "restaurant name")
	_ = restaurantCreateCmd.MarkFlagRequired("name")
}
