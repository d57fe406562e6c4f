package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecommerce/database"
	"ecommerce/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Cart writes are compare-and-update against the items array the request
// read, retried a few times on conflict. A lost race never silently
// drops another request's change.
const casRetries = 3

var errCartConflict = errors.New("cart modified concurrently")

type CartController struct {
	Carts    *mongo.Collection
	Products *mongo.Collection
}

func NewCartController(db *mongo.Database) *CartController {
	return &CartController{
		Carts:    db.Collection(database.Carts),
		Products: db.Collection(database.Products),
	}
}

func (cc *CartController) loadCart(ctx context.Context, customerID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := cc.Carts.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&cart)
	if err != nil {
		return models.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// saveItems replaces the cart's items only if they still equal prior.
func (cc *CartController) saveItems(ctx context.Context, cart models.Cart, prior []models.CartItem) error {
	filter := bson.M{"_id": cart.ID, "items": prior}
	update := bson.M{"$set": bson.M{"items": cart.Items}}

	res, err := cc.Carts.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errCartConflict
	}
	return nil
}

func snapshotItems(items []models.CartItem) []models.CartItem {
	return append([]models.CartItem{}, items...)
}

func (cc *CartController) AddToCart(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
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

	productID, err := primitive.ObjectIDFromHex(body.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid productId"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var product models.Product
	if err := cc.Products.FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		cart, err := cc.loadCart(ctx, customerID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// First add for this customer. The unique customerId index
			// turns a concurrent create into a duplicate-key error, in
			// which case the loop falls through to the merge path.
			cart = models.Cart{
				ID:         primitive.NewObjectID(),
				CustomerID: customerID,
				Items:      []models.CartItem{},
			}
			cart.AddItem(productID, body.Quantity)

			_, err := cc.Carts.InsertOne(ctx, cart)
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Product added to cart", "cart": cart})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		prior := snapshotItems(cart.Items)
		cart.AddItem(productID, body.Quantity)

		err = cc.saveItems(ctx, cart, prior)
		if errors.Is(err, errCartConflict) {
			continue
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product added to cart", "cart": cart})
		return
	}

	c.JSON(http.StatusConflict, gin.H{"error": "Cart is being modified, please retry"})
}

func (cc *CartController) UpdateCart(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  *int   `json:"quantity" binding:"required,gte=0"`
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

	productID, err := primitive.ObjectIDFromHex(body.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid productId"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for attempt := 0; attempt < casRetries; attempt++ {
		cart, err := cc.loadCart(ctx, customerID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		prior := snapshotItems(cart.Items)

		// Quantity 0 deletes the line item; anything else overwrites.
		if !cart.SetItemQuantity(productID, *body.Quantity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found in cart"})
			return
		}

		err = cc.saveItems(ctx, cart, prior)
		if errors.Is(err, errCartConflict) {
			continue
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "cart": cart})
		return
	}

	c.JSON(http.StatusConflict, gin.H{"error": "Cart is being modified, please retry"})
}

func (cc *CartController) RemoveFromCart(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required"`
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

	productID, err := primitive.ObjectIDFromHex(body.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid productId"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for attempt := 0; attempt < casRetries; attempt++ {
		cart, err := cc.loadCart(ctx, customerID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		prior := snapshotItems(cart.Items)

		// Removing a product that is not in the cart is a no-op success.
		cart.RemoveItem(productID)

		err = cc.saveItems(ctx, cart, prior)
		if errors.Is(err, errCartConflict) {
			continue
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product removed from cart", "cart": cart})
		return
	}

	c.JSON(http.StatusConflict, gin.H{"error": "Cart is being modified, please retry"})
}

func (cc *CartController) GetCart(c *gin.Context) {
	customerID, err := currentCustomerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cart, err := cc.loadCart(ctx, customerID)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && len(cart.Items) == 0) {
		c.JSON(http.StatusOK, gin.H{"message": "Your cart is empty", "cart": []gin.H{}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	// Prices come from the live catalog, not from add-time. A product
	// price change shows up on the next view.
	details := make([]gin.H, 0, len(cart.Items))
	var totalAmount float64
	for _, item := range cart.Items {
		var product models.Product
		if err := cc.Products.FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&product); err != nil {
			continue
		}

		lineTotal := float64(item.Quantity) * product.Price
		details = append(details, gin.H{
			"product":     product.Name,
			"description": product.Description,
			"quantity":    item.Quantity,
			"price":       product.Price,
			"total":       lineTotal,
		})
		totalAmount += lineTotal
	}

	if len(details) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Your cart is empty", "cart": []gin.H{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": details, "totalAmount": totalAmount})
}
