package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account. Email is unique across all restaurants.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	Password     string              `bson:"password" json:"-"` // bcrypt hash
	Role         string              `bson:"role" json:"role"`
	RestaurantID *primitive.ObjectID `bson:"restaurantId,omitempty" json:"restaurantId,omitempty"`
	Active       bool                `bson:"active" json:"active"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// HomeRestaurant returns the hex id of the user's restaurant, or "".
func (u User) HomeRestaurant() string {
	if u.RestaurantID == nil || u.RestaurantID.IsZero() {
		return ""
	}
	return u.RestaurantID.Hex()
}
