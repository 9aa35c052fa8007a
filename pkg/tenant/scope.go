package tenant

import (
	"regexp"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
)

// Source records where a resolved restaurant id came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceHome     Source = "home"
	SourceNone     Source = "none"
)

// Decision is the outcome of scope resolution for one request.
type Decision struct {
	RestaurantID string
	Source       Source
	Role         Role
	// Global is set for superadmins without a restaurant: list reads span
	// every tenant and tenant-bound operations fail.
	Global bool
	// Unassigned is set for ordinary roles whose account has no restaurant.
	Unassigned bool
}

var restaurantIDRE = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Resolve applies the scoping rules in priority order:
//
//  1. an explicit override is honoured for superadmins (or for any role under
//     AnyOverride); other roles may only name their own restaurant,
//  2. a superadmin without override uses its home restaurant or goes global,
//  3. ordinary roles use their home restaurant; a missing one is reported as
//     Unassigned.
func Resolve(role Role, home, override string, policy Policy) (Decision, error) {
	const op = "tenant.Resolve"

	if override != "" {
		if !restaurantIDRE.MatchString(override) {
			return Decision{}, apperr.Invalid(op, "restaurantId %q is not a valid id", override)
		}
		switch {
		case role.Elevated(), policy == AnyOverride:
			return Decision{RestaurantID: override, Source: SourceOverride, Role: role}, nil
		case override == home:
			return Decision{RestaurantID: home, Source: SourceHome, Role: role}, nil
		default:
			return Decision{}, apperr.Forbidden(op, "only a superadmin may act on another restaurant")
		}
	}

	if home != "" {
		return Decision{RestaurantID: home, Source: SourceHome, Role: role}, nil
	}
	if role.Elevated() {
		return Decision{Source: SourceNone, Role: role, Global: true}, nil
	}
	return Decision{Source: SourceNone, Role: role, Unassigned: true}, nil
}

// Resolved reports whether a concrete restaurant was chosen.
func (d Decision) Resolved() bool { return d.RestaurantID != "" }

// Require returns the restaurant id for operations that need a concrete
// tenant.
func (d Decision) Require(op string) (string, error) {
	switch {
	case d.RestaurantID != "":
		return d.RestaurantID, nil
	case d.Unassigned:
		return "", &apperr.Error{Code: apperr.EConfiguration, Op: op, Msg: "your account is not assigned to a restaurant"}
	default:
		return "", apperr.Invalid(op, "restaurantId is required for this operation")
	}
}
