package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusProcessing is the status every new order starts in. Orders are
// immutable after creation; nothing in this service transitions status.
const StatusProcessing = "Processing"

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID      primitive.ObjectID `bson:"customerId" json:"customerId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingDetails string             `bson:"shippingDetails" json:"shippingDetails"`
	OrderDate       time.Time          `bson:"orderDate" json:"orderDate"`
	Status          string             `bson:"status" json:"status"`
}

// OrderItem embeds the product as it was at checkout, freezing name and
// price. Cart views reprice from the live catalog; orders never do.
type OrderItem struct {
	Product  Product `bson:"product" json:"product"`
	Quantity int     `bson:"quantity" json:"quantity"`
}
