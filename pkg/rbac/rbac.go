// Package rbac gates routes by user role.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/pantry/pkg/middleware"
	"github.com/shashiranjanraj/pantry/pkg/response"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

// HasRole returns middleware that allows only the given roles. It must run
// after middleware.Authenticate.
func HasRole(roles ...tenant.Role) func(http.Handler) http.Handler {
	allowed := make(map[tenant.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Unauthorized(w, "")
				return
			}
			role, ok := tenant.ParseRole(raw)
			if !ok || !allowed[role] {
				response.Error(w, http.StatusForbidden, "Access denied: insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Staff admits every role. Admins and above manage; Superadmins only.
var (
	Staff      = HasRole(tenant.Kitchen, tenant.Admin, tenant.Superadmin)
	Managers   = HasRole(tenant.Admin, tenant.Superadmin)
	Superadmin = HasRole(tenant.Superadmin)
)
