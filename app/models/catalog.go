package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Supplier struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID `bson:"restaurantId" json:"restaurantId"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	Address      string             `bson:"address" json:"address"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Category struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID `bson:"restaurantId" json:"restaurantId"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Item is something a restaurant orders from one supplier. ActiveDays lists
// the weekdays on which it may be ordered and is never empty.
type Item struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID  `bson:"restaurantId" json:"restaurantId"`
	Name         string              `bson:"name" json:"name"`
	Description  string              `bson:"description" json:"description"`
	Unit         string              `bson:"unit" json:"unit"`
	SupplierID   primitive.ObjectID  `bson:"supplierId" json:"supplierId"`
	CategoryID   *primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	Active       bool                `bson:"active" json:"active"`
	ActiveDays   []string            `bson:"activeDays" json:"activeDays"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Unit is a unit of measure. At most one unit per restaurant is the default.
type Unit struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID `bson:"restaurantId" json:"restaurantId"`
	Name         string             `bson:"name" json:"name"`
	Abbreviation string             `bson:"abbreviation" json:"abbreviation"`
	IsDefault    bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Weekdays in calendar order, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ParseWeekday normalises a weekday token. Three-letter abbreviations are
// accepted.
func ParseWeekday(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Weekdays {
		if s == d || (len(s) == 3 && strings.HasPrefix(d, s)) {
			return d, true
		}
	}
	return "", false
}

// WeekdayOf returns the token for t's weekday.
func WeekdayOf(t time.Time) string {
	return Weekdays[(int(t.Weekday())+6)%7]
}
