package controllers

import (
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

// Index lists orders newest first; ?limit caps the result.
func (c *OrderController) Index(x *ctx.Context) {
	list, err := c.orders.List(x.Context(), x.Scope(), x.QueryInt("limit", 0))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(list)
}

func (c *OrderController) Show(x *ctx.Context) {
	o, err := c.orders.Get(x.Context(), x.Scope(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(o)
}

// Store persists the order and notifies suppliers. Notification failures are
// reported in the body; the order is created either way.
func (c *OrderController) Store(x *ctx.Context) {
	var in services.OrderInput
	if !x.BindJSON(&in) {
		return
	}
	res, err := c.orders.Submit(x.Context(), x.Scope(), x.Claims().UserID, in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(res)
}

func (c *OrderController) UpdateStatus(x *ctx.Context) {
	var in services.StatusInput
	if !x.BindJSON(&in) {
		return
	}
	o, err := c.orders.UpdateStatus(x.Context(), x.Scope(), x.Param("id"), in.Status)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(o)
}
