package routes

import (
	"github.com/shashiranjanraj/pantry/app/controllers"
	"github.com/shashiranjanraj/pantry/pkg/ctx"
	"github.com/shashiranjanraj/pantry/pkg/middleware"
	"github.com/shashiranjanraj/pantry/pkg/rbac"
	"github.com/shashiranjanraj/pantry/pkg/router"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

// RegisterAPI mounts every /api route. Tenant-bound groups resolve the
// restaurant scope after the role check.
func RegisterAPI(r *router.Router, c *controllers.Set, policy tenant.Policy) {
	api := r.Group("/api")
	api.Post("/auth/login", "auth.login", ctx.Wrap(c.Auth.Login))
	api.Get("/auth/me", "auth.me", ctx.Wrap(c.Auth.Me), middleware.Authenticate)

	staff := api.Group("", middleware.Authenticate, rbac.Staff, tenant.Middleware(policy))
	staff.Get("/items", "items.index", ctx.Wrap(c.Items.Index))
	staff.Get("/items/{id}", "items.show", ctx.Wrap(c.Items.Show))
	staff.Get("/suppliers", "suppliers.index", ctx.Wrap(c.Suppliers.Index))
	staff.Get("/suppliers/{id}", "suppliers.show", ctx.Wrap(c.Suppliers.Show))
	staff.Get("/categories", "categories.index", ctx.Wrap(c.Categories.Index))
	staff.Get("/categories/{id}", "categories.show", ctx.Wrap(c.Categories.Show))
	staff.Get("/units", "units.index", ctx.Wrap(c.Units.Index))
	staff.Get("/units/{id}", "units.show", ctx.Wrap(c.Units.Show))
	staff.Get("/orders", "orders.index", ctx.Wrap(c.Orders.Index))
	staff.Post("/orders", "orders.store", ctx.Wrap(c.Orders.Store))
	staff.Get("/orders/{id}", "orders.show", ctx.Wrap(c.Orders.Show))
	staff.Get("/stats", "stats.index", ctx.Wrap(c.Stats.Index))
	staff.Get("/restaurants/current", "restaurants.current", ctx.Wrap(c.Restaurants.Current))

	managers := api.Group("", middleware.Authenticate, rbac.Managers, tenant.Middleware(policy))
	managers.Post("/items", "items.store", ctx.Wrap(c.Items.Store))
	managers.Put("/items/{id}", "items.update", ctx.Wrap(c.Items.Update))
	managers.Delete("/items/{id}", "items.destroy", ctx.Wrap(c.Items.Destroy))
	managers.Post("/suppliers", "suppliers.store", ctx.Wrap(c.Suppliers.Store))
	managers.Put("/suppliers/{id}", "suppliers.update", ctx.Wrap(c.Suppliers.Update))
	managers.Delete("/suppliers/{id}", "suppliers.destroy", ctx.Wrap(c.Suppliers.Destroy))
	managers.Post("/categories", "categories.store", ctx.Wrap(c.Categories.Store))
	managers.Put("/categories/{id}", "categories.update", ctx.Wrap(c.Categories.Update))
	managers.Delete("/categories/{id}", "categories.destroy", ctx.Wrap(c.Categories.Destroy))
	managers.Post("/units", "units.store", ctx.Wrap(c.Units.Store))
	managers.Put("/units/{id}", "units.update", ctx.Wrap(c.Units.Update))
	managers.Patch("/units/{id}/default", "units.default", ctx.Wrap(c.Units.MakeDefault))
	managers.Delete("/units/{id}", "units.destroy", ctx.Wrap(c.Units.Destroy))
	managers.Patch("/orders/{id}/status", "orders.status", ctx.Wrap(c.Orders.UpdateStatus))
	managers.Get("/users", "users.index", ctx.Wrap(c.Users.Index))
	managers.Post("/users", "users.store", ctx.Wrap(c.Users.Store))
	managers.Get("/users/{id}", "users.show", ctx.Wrap(c.Users.Show))
	managers.Put("/users/{id}", "users.update", ctx.Wrap(c.Users.Update))
	managers.Patch("/users/{id}/active", "users.active", ctx.Wrap(c.Users.SetActive))
	managers.Delete("/users/{id}", "users.destroy", ctx.Wrap(c.Users.Destroy))
	managers.Put("/restaurants/current/email-settings", "restaurants.email", ctx.Wrap(c.Restaurants.UpdateEmailSettings))
	managers.Post("/restaurants/current/email-settings/test", "restaurants.email.test", ctx.Wrap(c.Restaurants.TestEmailSettings))

	platform := api.Group("/restaurants", middleware.Authenticate, rbac.Superadmin)
	platform.Get("", "restaurants.index", ctx.Wrap(c.Restaurants.Index))
	platform.Post("", "restaurants.store", ctx.Wrap(c.Restaurants.Store))
	platform.Get("/{id}", "restaurants.show", ctx.Wrap(c.Restaurants.Show))
	platform.Put("/{id}", "restaurants.update", ctx.Wrap(c.Restaurants.Update))
	platform.Patch("/{id}/active", "restaurants.active", ctx.Wrap(c.Restaurants.SetActive))
	platform.Delete("/{id}", "restaurants.destroy", ctx.Wrap(c.Restaurants.Destroy))
}
