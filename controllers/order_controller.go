package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"ecommerce/database"
	"ecommerce/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderController struct {
	Orders   *mongo.Collection
	Carts    *mongo.Collection
	Products *mongo.Collection
	Users    *mongo.Collection
}

func NewOrderController(db *mongo.Database) *OrderController {
	return &OrderController{
		Orders:   db.Collection(database.Orders),
		Carts:    db.Collection(database.Carts),
		Products: db.Collection(database.Products),
		Users:    db.Collection(database.Users),
	}
}

// PlaceOrder snapshots the cart into an immutable order and clears the
// cart. The order is inserted first; the clear is conditional on the
// items the snapshot was taken from, so a concurrent add is never wiped.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var body struct {
		ShippingDetails string `json:"shippingDetails" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, err)
		return
	}

	customerID, err := currentCustomerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cart models.Cart
	err = oc.Carts.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && len(cart.Items) == 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		var product models.Product
		if err := oc.Products.FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&product); err != nil {
			continue
		}
		items = append(items, models.OrderItem{Product: product, Quantity: item.Quantity})
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	order := models.Order{
		ID:              primitive.NewObjectID(),
		CustomerID:      customerID,
		Items:           items,
		ShippingDetails: body.ShippingDetails,
		OrderDate:       time.Now(),
		Status:          models.StatusProcessing,
	}

	if _, err := oc.Orders.InsertOne(ctx, order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	// Clear only if the items are still the ones we snapshotted. A crash
	// or a lost race leaves a stale cart, never a lost order.
	res, err := oc.Carts.UpdateOne(ctx,
		bson.M{"_id": cart.ID, "items": cart.Items},
		bson.M{"$set": bson.M{"items": []models.CartItem{}}},
	)
	if err == nil && res.MatchedCount == 0 {
		log.Printf("cart %s changed during checkout, clear skipped", cart.ID.Hex())
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order placed successfully", "orderId": order.ID.Hex()})
}

func (oc *OrderController) MyOrders(c *gin.Context) {
	customerID, err := currentCustomerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	page, limit := pageParams(c)
	oc.listOrders(c, customerID, page, limit)
}

// OrdersByCustomer is MyOrders with an explicit target customer. The
// target must match the authenticated identity; both sides are compared
// as ObjectIDs.
func (oc *OrderController) OrdersByCustomer(c *gin.Context) {
	customerID, err := currentCustomerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	target, err := primitive.ObjectIDFromHex(c.Param("customerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customerId"})
		return
	}

	if target != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied."})
		return
	}

	page, limit := pageParams(c)
	oc.listOrders(c, target, page, limit)
}

func (oc *OrderController) listOrders(c *gin.Context, customerID primitive.ObjectID, page, limit int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"customerId": customerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := oc.Orders.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	total, err := oc.Orders.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"currentPage": page,
		"totalPages":  totalPages(total, limit),
		"totalOrders": total,
	})
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// pageParams reads ?page and ?limit, falling back to 1 and 10 on
// missing, non-numeric or non-positive values.
func pageParams(c *gin.Context) (page, limit int) {
	return positiveIntQuery(c.Query("page"), 1), positiveIntQuery(c.Query("limit"), 10)
}

func positiveIntQuery(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
