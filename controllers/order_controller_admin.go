package controllers

import (
	"context"
	"net/http"
	"time"

	"ecommerce/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// GetAllOrders dumps every order with the customer and per-item product
// resolved to display fields. Registered behind the admin gate.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := oc.Orders.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	resp := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		customer := gin.H{}
		var user models.User
		if err := oc.Users.FindOne(ctx, bson.M{"_id": order.CustomerID}).Decode(&user); err == nil {
			customer = gin.H{"name": user.Name, "email": user.Email}
		}

		items := make([]gin.H, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, gin.H{
				"product":  gin.H{"name": item.Product.Name, "price": item.Product.Price},
				"quantity": item.Quantity,
			})
		}

		resp = append(resp, gin.H{
			"id":              order.ID.Hex(),
			"customer":        customer,
			"items":           items,
			"shippingDetails": order.ShippingDetails,
			"orderDate":       order.OrderDate,
			"status":          order.Status,
		})
	}

	c.JSON(http.StatusOK, resp)
}
