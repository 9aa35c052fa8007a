// Package tenant resolves which restaurant a request is scoped to.
//
// Every request passes authenticate → authorize-by-role → resolve-scope.
// The last stage is a single policy function, Resolve, which middleware
// applies and stores in the request context for handlers:
//
//	d := tenant.FromCtx(r.Context())
//	id, err := d.Require("items.create")
package tenant

import "strings"

// Role is one of the closed set of user roles.
type Role string

const (
	Kitchen    Role = "kitchen"
	Admin      Role = "admin"
	Superadmin Role = "superadmin"
)

// Roles lists every valid role.
var Roles = []Role{Kitchen, Admin, Superadmin}

// ParseRole validates s as a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case Kitchen, Admin, Superadmin:
		return r, true
	}
	return "", false
}

// Elevated reports whether the role may act across restaurants.
func (r Role) Elevated() bool { return r == Superadmin }

func (r Role) String() string { return string(r) }

// Policy controls who may use a restaurant override.
type Policy int

const (
	// ElevatedOverride honours an override only for superadmins. Ordinary
	// roles may repeat their own restaurant id but nothing else.
	ElevatedOverride Policy = iota
	// AnyOverride honours an override for every authenticated role.
	AnyOverride
)

// ParsePolicy maps the TENANT_OVERRIDE config value to a Policy.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), "any") {
		return AnyOverride
	}
	return ElevatedOverride
}
