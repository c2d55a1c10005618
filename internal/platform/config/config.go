// Package config builds the process configuration from environment variables
// so main stays lean. Provider credentials are passed explicitly into each
// client at construction; nothing in this repo reads ambient globals.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr string `env:"CHECKOUT_ADDR" envDefault:":8080"`

	// PublicBaseURL is used to build payment success/cancel callback URLs.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	RegistrarBaseURL   string `env:"REGISTRAR_BASE_URL" envDefault:"https://api.ote-godaddy.com"`
	RegistrarAPIKey    string `env:"REGISTRAR_API_KEY"`
	RegistrarAPISecret string `env:"REGISTRAR_API_SECRET"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	// PostgresDSN selects the Postgres stores when set; the in-memory
	// stores are used otherwise.
	PostgresDSN string `env:"POSTGRES_DSN"`

	// RedisAddr enables the agreement cache when set.
	RedisAddr string `env:"REDIS_ADDR"`

	// KafkaBrokers enables the Kafka audit publisher when set.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic   string   `env:"AUDIT_TOPIC" envDefault:"checkout.audit"`

	// NameServers are submitted with every registrar order.
	NameServers []string `env:"NAME_SERVERS" envSeparator:"," envDefault:"ns01.domaincontrol.com,ns02.domaincontrol.com"`
}

// Load reads .env when present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
