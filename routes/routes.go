package routes

import (
	"ecommerce/config"
	"ecommerce/controllers"
	"ecommerce/middleware"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func Register(r *gin.Engine, db *mongo.Database, cfg config.Config) {
	authCtrl := controllers.NewAuthController(db, cfg.JWTSecret)
	productCtrl := controllers.NewProductController(db)
	cartCtrl := controllers.NewCartController(db)
	orderCtrl := controllers.NewOrderController(db)

	authRequired := middleware.Auth(cfg.JWTSecret)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authCtrl.Signup)
		auth.POST("/signin", authCtrl.Signin)
	}

	products := r.Group("/products")
	{
		products.GET("/", productCtrl.ListProducts)

		admin := products.Group("", authRequired, middleware.AdminOnly())
		{
			admin.POST("/", productCtrl.CreateProduct)
			admin.PUT("/updateproduct/:productId", productCtrl.UpdateProduct)
			admin.DELETE("/deleteproduct/:productId", productCtrl.DeleteProduct)
		}
	}

	cart := r.Group("/cart", authRequired)
	{
		cart.POST("/add", cartCtrl.AddToCart)
		cart.PUT("/update", cartCtrl.UpdateCart)
		cart.DELETE("/delete", cartCtrl.RemoveFromCart)
		cart.GET("/", cartCtrl.GetCart)
	}

	orders := r.Group("/orders")
	{
		orders.GET("/getallorders", authRequired, middleware.AdminOnly(), orderCtrl.GetAllOrders)

		protected := orders.Group("", authRequired)
		{
			protected.POST("/placeorder", orderCtrl.PlaceOrder)
			protected.GET("/myorders", orderCtrl.MyOrders)
			protected.GET("/customer/:customerId", orderCtrl.OrdersByCustomer)
		}
	}
}
