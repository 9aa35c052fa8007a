// Package ctx provides a request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func (c *ItemController) Show(x *ctx.Context) {
//	    item, err := c.items.Get(x.Context(), x.Scope(), x.Param("id"))
//	    if err != nil {
//	        x.Fail(err)
//	        return
//	    }
//	    x.Success(item)
//	}
//
//	router.Get("/items/{id}", "items.show", ctx.Wrap(ctrl.Show))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/auth"
	"github.com/shashiranjanraj/pantry/pkg/bind"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/middleware"
	"github.com/shashiranjanraj/pantry/pkg/response"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// QueryInt parses a numeric query value, returning def when absent or invalid.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Claims returns the authenticated caller's token claims.
func (c *Context) Claims() *auth.Claims {
	claims, _ := middleware.ClaimsFromCtx(c.R)
	return claims
}

// Scope returns the tenant decision resolved for this request.
func (c *Context) Scope() tenant.Decision {
	return tenant.FromCtx(c.R.Context())
}

// BindJSON decodes the JSON body into dest and runs validation.
// On failure it writes the 400 response and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		response.Error(c.W, http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// Success sends a 200 JSON envelope.
func (c *Context) Success(data any) { response.Success(c.W, data) }

// Created sends a 201 JSON envelope.
func (c *Context) Created(data any) { response.Created(c.W, data) }

// Message sends a 200 envelope carrying only a message.
func (c *Context) Message(msg string) {
	response.Write(c.W, http.StatusOK, response.Envelope{Status: http.StatusOK, Message: msg})
}

// Fail renders err through apperr's code → status mapping and logs
// server-side failures.
func (c *Context) Fail(err error) {
	if apperr.HTTPStatus(err) >= http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method,
			"path", c.R.URL.Path,
			"error", err,
		)
	}
	response.Err(c.W, err)
}
