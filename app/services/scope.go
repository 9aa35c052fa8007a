package services

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/tenant"
)

var now = func() time.Time { return time.Now().UTC() }

// readFilter returns the restaurant predicate for reads. ok is false when the
// caller has no restaurant and must see nothing.
func readFilter(d tenant.Decision) (bson.M, bool) {
	switch {
	case d.RestaurantID != "":
		oid, err := primitive.ObjectIDFromHex(d.RestaurantID)
		if err != nil {
			return nil, false
		}
		return bson.M{"restaurantId": oid}, true
	case d.Global:
		return bson.M{}, true
	}
	return nil, false
}

// byID builds the id+tenant predicate for a single document. A global
// superadmin matches on id alone.
func byID(d tenant.Decision, op, rawID, entity string) (bson.M, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, apperr.NotFound(op, entity)
	}
	filter, ok := readFilter(d)
	if !ok {
		_, err := d.Require(op)
		return nil, err
	}
	filter["_id"] = id
	return filter, nil
}

// requireRestaurant returns the restaurant a create operation writes into.
func requireRestaurant(d tenant.Decision, op string) (primitive.ObjectID, error) {
	raw, err := d.Require(op)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid(op, "restaurantId %q is not a valid id", raw)
	}
	return oid, nil
}

func optionalID(op, field, raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperr.Invalid(op, "The %s must be a valid id.", field)
	}
	return &oid, nil
}
