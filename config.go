package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port        string
	Environment string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string
	CartTTL  string

	KafkaBrokers []string
	KafkaTopic   string

	S3Bucket  string
	S3BaseURL string

	PaypalClientID  string
	PaypalSecret    string
	PaypalAPIBase   string
	PaypalReturnURL string
	PaypalCancelURL string

	TaxRate  decimal.Decimal
	Currency string
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine in containers; env vars win either way.
	_ = godotenv.Load()

	taxRate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.07"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CartTTL:  getEnv("CART_TTL", "720h"),

		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("ORDER_EVENTS_TOPIC", "order.events"),

		S3Bucket:  os.Getenv("S3_BUCKET"),
		S3BaseURL: os.Getenv("S3_BASE_URL"),

		PaypalClientID:  os.Getenv("PAYPAL_CLIENT_ID"),
		PaypalSecret:    os.Getenv("PAYPAL_SECRET"),
		PaypalAPIBase:   getEnv("PAYPAL_API_BASE", "https://api-m.sandbox.paypal.com"),
		PaypalReturnURL: getEnv("PAYPAL_RETURN_URL", "http://localhost:3000/payment/success"),
		PaypalCancelURL: getEnv("PAYPAL_CANCEL_URL", "http://localhost:3000/payment/cancel"),

		TaxRate:  taxRate,
		Currency: getEnv("CURRENCY", "USD"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	if cfg.PaypalClientID == "" || cfg.PaypalSecret == "" {
		return nil, fmt.Errorf("PayPal config incomplete")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
