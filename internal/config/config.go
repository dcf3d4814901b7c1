package config

import (
	"fmt"
	"os"
)

// Config carries the per-storefront configuration. Secret values are opaque
// and never interpreted locally.
type Config struct {
	ServiceName string
	Env         string
	Addr        string

	// Currency applied to every submitted order. The minor-unit conversion
	// for payment intents assumes two decimal places.
	Currency string

	StripeSecretKey      string
	StripeEndpointSecret string
	CrystallizeAPIURL    string
	CrystallizeAPIToken  string
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:          getenvDefault("SERVICE_NAME", "storefront-payments"),
		Env:                  getenvDefault("ENV", "dev"),
		Addr:                 getenvDefault("ADDR", ":8080"),
		Currency:             getenvDefault("ORDER_CURRENCY", "EUR"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeEndpointSecret: os.Getenv("STRIPE_PAYMENT_INTENT_WEBHOOK_ENDPOINT_SECRET"),
		CrystallizeAPIURL:    getenvDefault("CRYSTALLIZE_API_URL", "https://pim.crystallize.com"),
		CrystallizeAPIToken:  os.Getenv("CRYSTALLIZE_API_TOKEN"),
	}

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("config: STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeEndpointSecret == "" {
		return nil, fmt.Errorf("config: STRIPE_PAYMENT_INTENT_WEBHOOK_ENDPOINT_SECRET is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
