// Package controllers adapts HTTP requests to service calls.
package controllers

import (
	"strconv"

	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/ctx"
)

// Set groups every controller the API routes need.
type Set struct {
	Auth        *AuthController
	Items       *ItemController
	Suppliers   *SupplierController
	Categories  *CategoryController
	Units       *UnitController
	Orders      *OrderController
	Users       *UserController
	Restaurants *RestaurantController
	Stats       *StatsController
}

// Services is the service layer the controllers depend on.
type Services struct {
	Auth        *services.AuthService
	Items       *services.ItemService
	Suppliers   *services.SupplierService
	Categories  *services.CategoryService
	Units       *services.UnitService
	Orders      *services.OrderService
	Users       *services.UserService
	Restaurants *services.RestaurantService
	Stats       *services.StatsService
}

func New(s Services) *Set {
	return &Set{
		Auth:        &AuthController{auth: s.Auth},
		Items:       &ItemController{items: s.Items},
		Suppliers:   &SupplierController{suppliers: s.Suppliers},
		Categories:  &CategoryController{categories: s.Categories},
		Units:       &UnitController{units: s.Units},
		Orders:      &OrderController{orders: s.Orders},
		Users:       &UserController{users: s.Users},
		Restaurants: &RestaurantController{restaurants: s.Restaurants},
		Stats:       &StatsController{stats: s.Stats},
	}
}

func actor(x *ctx.Context) services.Actor {
	a := services.Actor{Role: x.Scope().Role}
	if c := x.Claims(); c != nil {
		a.ID = c.UserID
	}
	return a
}

// queryBool parses an optional boolean query parameter.
func queryBool(x *ctx.Context, key string) *bool {
	b, err := strconv.ParseBool(x.Query(key))
	if err != nil {
		return nil
	}
	return &b
}

type activeInput struct {
	Active *bool `json:"active" validate:"required"`
}
