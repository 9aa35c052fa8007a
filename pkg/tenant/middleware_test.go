package tenant_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pantry/pkg/auth"
	"github.com/shashiranjanraj/pantry/pkg/middleware"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

func serve(t *testing.T, claims *auth.Claims, req *http.Request) (tenant.Decision, string, *httptest.ResponseRecorder) {
	t.Helper()
	var got tenant.Decision
	var body string
	h := tenant.Middleware(tenant.ElevatedOverride)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = tenant.FromCtx(r.Context())
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	}))
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, body, rec
}

func TestMiddlewareOverrideSources(t *testing.T) {
	super := &auth.Claims{UserID: "s", Role: "superadmin"}

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set(tenant.OverrideHeader, homeA)
	d, _, _ := serve(t, super, req)
	assert.Equal(t, homeA, d.RestaurantID)

	req = httptest.NewRequest(http.MethodGet, "/items?restaurantId="+homeB, nil)
	d, _, _ = serve(t, super, req)
	assert.Equal(t, homeB, d.RestaurantID)

	payload := `{"name":"Flour","restaurantId":"` + homeB + `"}`
	req = httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(payload))
	d, body, _ := serve(t, super, req)
	assert.Equal(t, homeB, d.RestaurantID)
	assert.Equal(t, payload, body, "body must be readable downstream")
}

func TestMiddlewareRejectsForeignOverrideForKitchen(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set(tenant.OverrideHeader, homeB)
	_, _, rec := serve(t, &auth.Claims{UserID: "k", Role: "kitchen", RestaurantID: homeA}, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddlewareRequiresClaims(t *testing.T) {
	_, _, rec := serve(t, nil, httptest.NewRequest(http.MethodGet, "/items", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
