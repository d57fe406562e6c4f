package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup. It is
// built once in main and handed to the pieces that need it; nothing
// reads os.Getenv after boot.
type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret []byte
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		MongoURI:  os.Getenv("MONGO_URI"),
		DBName:    os.Getenv("DB_NAME"),
		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
	}

	if cfg.MongoURI == "" || cfg.DBName == "" {
		log.Fatal("❌ MONGO_URI or DB_NAME not set in environment variables")
	}
	if len(cfg.JWTSecret) == 0 {
		log.Fatal("❌ JWT_SECRET not set in environment variables")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
