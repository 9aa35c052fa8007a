package controllers

import (
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/ctx"
)

type RestaurantController struct {
	restaurants *services.RestaurantService
}

func (c *RestaurantController) Index(x *ctx.Context) {
	list, err := c.restaurants.List(x.Context())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(list)
}

func (c *RestaurantController) Show(x *ctx.Context) {
	r, err := c.restaurants.Get(x.Context(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(r)
}

// Store runs the bootstrap flow and returns the restaurant with its seed
// accounts.
func (c *RestaurantController) Store(x *ctx.Context) {
	var in services.RestaurantInput
	if !x.BindJSON(&in) {
		return
	}
	res, err := c.restaurants.Bootstrap(x.Context(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(res)
}

func (c *RestaurantController) Update(x *ctx.Context) {
	var in services.RestaurantInput
	if !x.BindJSON(&in) {
		return
	}
	r, err := c.restaurants.Update(x.Context(), x.Param("id"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(r)
}

func (c *RestaurantController) SetActive(x *ctx.Context) {
	var in activeInput
	if !x.BindJSON(&in) {
		return
	}
	r, err := c.restaurants.SetActive(x.Context(), x.Param("id"), *in.Active)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(r)
}

func (c *RestaurantController) Destroy(x *ctx.Context) {
	if err := c.restaurants.Delete(x.Context(), x.Param("id")); err != nil {
		x.Fail(err)
		return
	}
	x.Message("Restaurant deleted")
}

func (c *RestaurantController) Current(x *ctx.Context) {
	r, err := c.restaurants.Current(x.Context(), x.Scope())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(r)
}

func (c *RestaurantController) UpdateEmailSettings(x *ctx.Context) {
	var in services.EmailSettingsInput
	if !x.BindJSON(&in) {
		return
	}
	r, err := c.restaurants.UpdateEmailSettings(x.Context(), x.Scope(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(r)
}

func (c *RestaurantController) TestEmailSettings(x *ctx.Context) {
	var in services.TestEmailInput
	if !x.BindJSON(&in) {
		return
	}
	if err := c.restaurants.SendTestEmail(x.Context(), x.Scope(), in.To); err != nil {
		x.Fail(err)
		return
	}
	x.Message("Test email sent")
}

type StatsController struct {
	stats *services.StatsService
}

func (c *StatsController) Index(x *ctx.Context) {
	st, err := c.stats.Counts(x.Context(), x.Scope())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(st)
}
