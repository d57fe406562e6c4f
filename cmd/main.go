package main

import (
	"context"
	"log"
	"time"

	"ecommerce/config"
	"ecommerce/database"
	"ecommerce/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("❌ MongoDB connection error:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("❌ Failed to create indexes:", err)
	}

	r := gin.Default()
	r.SetTrustedProxies(nil)
	routes.Register(r, db, cfg)

	r.Run(":" + cfg.Port)
}
