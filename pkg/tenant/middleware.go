package tenant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/pantry/pkg/bind"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/middleware"
	"github.com/shashiranjanraj/pantry/pkg/response"
)

const (
	// OverrideHeader names the restaurant a superadmin wants to act on.
	OverrideHeader = "X-Restaurant-Id"
	// OverrideField is the query parameter and body field equivalent.
	OverrideField = "restaurantId"
)

type decisionKey struct{}

// WithDecision stores d in ctx.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, d)
}

// FromCtx returns the decision stored by Middleware. Without one, the zero
// Decision resolves nothing.
func FromCtx(ctx context.Context) Decision {
	d, _ := ctx.Value(decisionKey{}).(Decision)
	return d
}

// Middleware resolves the request scope. It must run after
// middleware.Authenticate and the role gate.
func Middleware(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := middleware.ClaimsFromCtx(r)
			if !ok {
				response.Unauthorized(w, "")
				return
			}
			role, ok := ParseRole(claims.Role)
			if !ok {
				response.Forbidden(w)
				return
			}

			d, err := Resolve(role, claims.RestaurantID, OverrideFromRequest(r), policy)
			if err != nil {
				response.Err(w, err)
				return
			}
			if d.Unassigned {
				logger.WithCtx(r.Context()).Warn("user has no restaurant assigned",
					"user_id", claims.UserID, "role", claims.Role)
			}

			next.ServeHTTP(w, r.WithContext(WithDecision(r.Context(), d)))
		})
	}
}

// OverrideFromRequest reads the restaurant override from the header, the
// query string (GET, DELETE) or the JSON body (POST, PUT, PATCH). The body
// is restored for downstream decoding.
func OverrideFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(OverrideHeader)); v != "" {
		return v
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return overrideFromBody(r)
	default:
		return strings.TrimSpace(r.URL.Query().Get(OverrideField))
	}
}

func overrideFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, bind.MaxBodyBytes()+1))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var probe struct {
		RestaurantID string `json:"restaurantId"`
	}
	if json.Unmarshal(raw, &probe) != nil {
		return ""
	}
	return strings.TrimSpace(probe.RestaurantID)
}
