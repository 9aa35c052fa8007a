package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const OrderPending = "pending"

// Order is created once; afterwards only Status changes.
type Order struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RestaurantID primitive.ObjectID  `bson:"restaurantId" json:"restaurantId"`
	Items        []OrderLine         `bson:"items" json:"items"`
	Status       string              `bson:"status" json:"status"`
	CreatedBy    *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	// SupplierNotes maps supplier id (hex) to a note for that supplier only.
	SupplierNotes map[string]string `bson:"supplierNotes,omitempty" json:"supplierNotes,omitempty"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// OrderLine references an item. Unit overrides the item's own unit when set.
type OrderLine struct {
	ItemID   primitive.ObjectID `bson:"itemId" json:"itemId"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Unit     string             `bson:"unit,omitempty" json:"unit,omitempty"`
}
