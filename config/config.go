package config

import (
	"fmt"
	"os"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string

	JWTSecret string

	StripeSecretKey string
	StripeBaseURL   string

	// Prices are in the currency's minor unit (cents).
	BoostPriceCents        int64
	SubscriptionPriceCents int64
	Currency               string

	// ClientURL is the frontend origin used for checkout redirects and CORS.
	ClientURL string
}

// Load reads the service configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		MongoURI:               os.Getenv("MONGODB_URI"),
		MongoDatabase:          getEnv("MONGODB_DATABASE", "issue_reporting_system"),
		RedisAddr:              getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		StripeSecretKey:        os.Getenv("STRIPE_SECRET_KEY"),
		StripeBaseURL:          getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
		BoostPriceCents:        500,
		SubscriptionPriceCents: 999,
		Currency:               getEnv("PAYMENT_CURRENCY", "usd"),
		ClientURL:              getEnv("CLIENT_URL", "http://localhost:5173"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
