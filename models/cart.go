package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Cart is the single in-progress cart for one customer. There is at most
// one document per customerId (unique index) and at most one line item
// per product within it.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID primitive.ObjectID `bson:"customerId" json:"customerId"`
	Items      []CartItem         `bson:"items" json:"items"`
}

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// AddItem merges quantity into an existing line item for the product, or
// appends a new one. Repeated adds accumulate.
func (c *Cart) AddItem(productID primitive.ObjectID, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
}

// SetItemQuantity overwrites the quantity of an existing line item.
// Quantity 0 removes the item. Returns false when the product is not in
// the cart.
func (c *Cart) SetItemQuantity(productID primitive.ObjectID, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if quantity == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = quantity
		}
		return true
	}
	return false
}

// RemoveItem drops any line item for the product. Removing a product
// that is not in the cart is a no-op.
func (c *Cart) RemoveItem(productID primitive.ObjectID) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}
