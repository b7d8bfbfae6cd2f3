package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	From          string
	MerchantEmail string
}

type OblioConfig struct {
	BaseURL     string
	Email       string
	SecretToken string
	CIF         string
	SeriesName  string
}

type CourierConfig struct {
	BaseURL string
	APIKey  string
}

type Config struct {
	App struct {
		Port string
	}
	Postgres PostgresConfig
	Stripe   StripeConfig
	SMTP     SMTPConfig
	Oblio    OblioConfig
	Courier  CourierConfig
	Admin    struct {
		Secret string
	}
}

// Load reads configuration from the given .env file (optional) and the
// process environment. Variables without defaults are required.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getenv("APP_PORT", "8080")

	var err error
	if cfg.Postgres.Host, err = require("DB_HOST"); err != nil {
		return nil, err
	}
	cfg.Postgres.Port = getenv("DB_PORT", "5432")
	if cfg.Postgres.User, err = require("DB_USER"); err != nil {
		return nil, err
	}
	if cfg.Postgres.Password, err = require("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Postgres.DBName, err = require("DB_NAME"); err != nil {
		return nil, err
	}
	cfg.Postgres.SSLMode = getenv("DB_SSLMODE", "disable")
	cfg.Postgres.MaxConns = int32(getenvInt("DB_MAX_CONNS", 10))
	cfg.Postgres.MinConns = int32(getenvInt("DB_MIN_CONNS", 2))
	cfg.Postgres.MaxConnLifetime = time.Duration(getenvInt("DB_MAX_CONN_LIFETIME_MINUTES", 30)) * time.Minute
	cfg.Postgres.MigrationsPath = getenv("DB_MIGRATIONS_PATH", "migrations")

	if cfg.Stripe.SecretKey, err = require("STRIPE_SECRET_KEY"); err != nil {
		return nil, err
	}
	if cfg.Stripe.WebhookSecret, err = require("STRIPE_WEBHOOK_SECRET"); err != nil {
		return nil, err
	}
	cfg.Stripe.SuccessURL = getenv("STRIPE_SUCCESS_URL", "https://lunetoptics.ro/comanda-plasata")
	cfg.Stripe.CancelURL = getenv("STRIPE_CANCEL_URL", "https://lunetoptics.ro/cos")
	cfg.Stripe.Currency = getenv("STRIPE_CURRENCY", "ron")

	cfg.SMTP.Host = getenv("SMTP_HOST", "")
	cfg.SMTP.Port = getenv("SMTP_PORT", "587")
	cfg.SMTP.User = getenv("SMTP_USER", "")
	cfg.SMTP.Password = getenv("SMTP_PASSWORD", "")
	cfg.SMTP.From = getenv("SMTP_FROM", cfg.SMTP.User)
	cfg.SMTP.MerchantEmail = getenv("MERCHANT_EMAIL", "")

	cfg.Oblio.BaseURL = getenv("OBLIO_BASE_URL", "https://www.oblio.eu")
	cfg.Oblio.Email = getenv("OBLIO_EMAIL", "")
	cfg.Oblio.SecretToken = getenv("OBLIO_SECRET_TOKEN", "")
	cfg.Oblio.CIF = getenv("OBLIO_CIF", "")
	cfg.Oblio.SeriesName = getenv("OBLIO_SERIES_NAME", "LNT")

	cfg.Courier.BaseURL = getenv("COURIER_BASE_URL", "")
	cfg.Courier.APIKey = getenv("COURIER_API_KEY", "")

	if cfg.Admin.Secret, err = require("ADMIN_SECRET"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func require(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
