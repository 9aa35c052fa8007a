package ctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/auth"
	appctx "github.com/shashiranjanraj/pantry/pkg/ctx"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/middleware"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	})(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":{"id":1}`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreatedAndMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) { c.Created("x") })(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) { c.Message("Item deleted") })(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	if !strings.Contains(rec.Body.String(), `"message":"Item deleted"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"name":"Tomatoes","email":"sales@farm.test"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name  string `json:"name"  validate:"required"`
			Email string `json:"email" validate:"required,email"`
		}
		if !c.BindJSON(&input) {
			t.Error("expected BindJSON to succeed")
			return
		}
		if input.Name != "Tomatoes" {
			t.Errorf("expected Tomatoes, got %s", input.Name)
		}
		c.Success(nil)
	})(rec, req)
}

func TestBindJSONValidationFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name" validate:"required"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail")
		}
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name"`) {
		t.Errorf("expected field error, got %s", rec.Body.String())
	}
}

func TestBindJSONEmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct{}
		c.BindJSON(&input)
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestFailUsesErrorCode(t *testing.T) {
	logger.Discard()
	cases := map[error]int{
		apperr.NotFound("op", "Item"):             http.StatusNotFound,
		apperr.Conflict("op", "taken"):            http.StatusConflict,
		apperr.Configuration("op", "no mail"):     http.StatusInternalServerError,
		apperr.Forbidden("op", "not yours"):       http.StatusForbidden,
		apperr.Invalid("op", "bad %s", "request"): http.StatusBadRequest,
	}
	for err, want := range cases {
		rec := httptest.NewRecorder()
		appctx.Wrap(func(c *appctx.Context) { c.Fail(err) })(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != want {
			t.Errorf("%v: expected %d, got %d", err, want, rec.Code)
		}
	}
}

func TestParamQueryAndQueryInt(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/items/{id}", appctx.Wrap(func(c *appctx.Context) {
		if got := c.Param("id"); got != "abc" {
			t.Errorf("expected abc, got %q", got)
		}
		if got := c.Query("day"); got != "monday" {
			t.Errorf("expected monday, got %q", got)
		}
		if got := c.QueryInt("limit", 5); got != 20 {
			t.Errorf("expected 20, got %d", got)
		}
		if got := c.QueryInt("missing", 5); got != 5 {
			t.Errorf("expected default 5, got %d", got)
		}
		c.Success(nil)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/abc?day=monday&limit=20", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestClaimsAndScope(t *testing.T) {
	claims := &auth.Claims{UserID: "u1", Role: "admin", RestaurantID: "r1"}
	decision := tenant.Decision{RestaurantID: "r1", Source: tenant.SourceHome, Role: tenant.Admin}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := tenant.WithDecision(middleware.WithClaims(context.Background(), claims), decision)
	req = req.WithContext(ctx)

	appctx.Wrap(func(c *appctx.Context) {
		if c.Claims() == nil || c.Claims().UserID != "u1" {
			t.Errorf("claims not propagated: %+v", c.Claims())
		}
		if c.Scope() != decision {
			t.Errorf("expected %+v, got %+v", decision, c.Scope())
		}
	})(httptest.NewRecorder(), req)
}
