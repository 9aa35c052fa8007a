package controllers

import (
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/ctx"
)

type UserController struct {
	users *services.UserService
}

func (c *UserController) Index(x *ctx.Context) {
	list, err := c.users.List(x.Context(), x.Scope())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(list)
}

func (c *UserController) Show(x *ctx.Context) {
	u, err := c.users.Get(x.Context(), x.Scope(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(u)
}

func (c *UserController) Store(x *ctx.Context) {
	var in services.CreateUserInput
	if !x.BindJSON(&in) {
		return
	}
	u, err := c.users.Create(x.Context(), x.Scope(), actor(x), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(u)
}

func (c *UserController) Update(x *ctx.Context) {
	var in services.UpdateUserInput
	if !x.BindJSON(&in) {
		return
	}
	u, err := c.users.Update(x.Context(), x.Scope(), actor(x), x.Param("id"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(u)
}

func (c *UserController) SetActive(x *ctx.Context) {
	var in activeInput
	if !x.BindJSON(&in) {
		return
	}
	u, err := c.users.SetActive(x.Context(), x.Scope(), actor(x), x.Param("id"), *in.Active)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(u)
}

func (c *UserController) Destroy(x *ctx.Context) {
	if err := c.users.Delete(x.Context(), x.Scope(), actor(x), x.Param("id")); err != nil {
		x.Fail(err)
		return
	}
	x.Message("User deleted")
}
