package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	POSAddr           string
	GRPCHealthAddr    string
	OrderAPIBaseURL   string
	RestaurantID      string
	PostgresDSN       string
	TaxRate           decimal.Decimal
	OrderBoardRefresh time.Duration
	HTTPClientTimeout time.Duration
	SessionTTL        time.Duration
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid %s=%q, using %s", k, v, def)
		return def
	}
	return d
}

func getRate(k string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	r, err := decimal.NewFromString(v)
	if err != nil || r.IsNegative() {
		log.Printf("[config] invalid %s=%q, using %s", k, v, def)
		return def
	}
	return r
}

func Load() Config {
	_ = godotenv.Load() // load .env if it exists
	cfg := Config{
		POSAddr:           getenv("POS_ADDR", ":8083"),
		GRPCHealthAddr:    getenv("GRPC_HEALTH_ADDR", ":50053"),
		OrderAPIBaseURL:   getenv("ORDER_API_BASEURL", "http://localhost:5000/api"),
		RestaurantID:      getenv("RESTAURANT_ID", ""),
		PostgresDSN:       getenv("POSTGRES_DSN", ""),
		TaxRate:           getRate("TAX_RATE", decimal.RequireFromString("0.18")),
		OrderBoardRefresh: getDuration("ORDER_BOARD_REFRESH", 15*time.Second),
		HTTPClientTimeout: getDuration("HTTP_CLIENT_TIMEOUT", 5*time.Second),
		SessionTTL:        getDuration("SESSION_TTL", 12*time.Hour),
	}
	log.Printf("[config] POS_ADDR=%s", cfg.POSAddr)
	log.Printf("[config] GRPC_HEALTH_ADDR=%s", cfg.GRPCHealthAddr)
	log.Printf("[config] ORDER_API_BASEURL=%s", cfg.OrderAPIBaseURL)
	log.Printf("[config] TAX_RATE=%s journal=%t", cfg.TaxRate, cfg.PostgresDSN != "")
	return cfg
}
