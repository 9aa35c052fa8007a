package controllers

import (
	"github.com/shashiranjanraj/pantry/app/services"
	"github.com/shashiranjanraj/pantry/pkg/ctx"
)

type AuthController struct {
	auth *services.AuthService
}

func (c *AuthController) Login(x *ctx.Context) {
	var in services.LoginInput
	if !x.BindJSON(&in) {
		return
	}
	out, err := c.auth.Login(x.Context(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(out)
}

func (c *AuthController) Me(x *ctx.Context) {
	u, err := c.auth.Me(x.Context(), x.Claims().UserID)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(u)
}
