package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingSecret is returned when a mandatory secret is not configured.
// Secrets have no fallback: running without them is a fatal misconfiguration.
var ErrMissingSecret = errors.New("missing required secret")

// This function will Load the ENVIRONMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

// Config holds all environment-backed configuration. It is constructed
// once at process start and passed by reference into the services that
// need it, so secrets are swappable in tests.
type Config struct {
	GO_ENV      string
	PORT        int
	APP_URL     string // public base URL used for payment redirect targets
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string
	DB_SSL_MODE string
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	// Stripe Configuration
	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string
	// Redis Configuration
	REDIS_URL string
	// Object storage (S3-compatible Spaces)
	SPACES_ACCESS_KEY string
	SPACES_SECRET_KEY string
	SPACES_BUCKET     string
	SPACES_REGION     string
	SPACES_ENDPOINT   string
	SPACES_CDN_URL    string
	// Bootstrap admin account (seeded on first run when set)
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
}

// Get reads the configuration from the environment. Missing auth or
// payment secrets are reported as errors rather than silently defaulted.
func Get() (*Config, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:3000"
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "trawers-api"
	}

	cfg := &Config{
		GO_ENV:      os.Getenv("GO_ENV"),
		PORT:        port,
		APP_URL:     appURL,
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),
		DB_HOST:     dbHost,
		DB_PORT:     dbPort,
		DB_SSL_MODE: os.Getenv("DB_SSL_MODE"),
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: jwtIssuer,
		// Stripe
		STRIPE_SECRET_KEY:     os.Getenv("STRIPE_SECRET_KEY"),
		STRIPE_WEBHOOK_SECRET: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Spaces
		SPACES_ACCESS_KEY: os.Getenv("SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY: os.Getenv("SPACES_SECRET_KEY"),
		SPACES_BUCKET:     os.Getenv("SPACES_BUCKET"),
		SPACES_REGION:     os.Getenv("SPACES_REGION"),
		SPACES_ENDPOINT:   os.Getenv("SPACES_ENDPOINT"),
		SPACES_CDN_URL:    os.Getenv("SPACES_CDN_URL"),
		// Bootstrap admin
		ADMIN_EMAIL:    os.Getenv("ADMIN_EMAIL"),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWT_SECRET == "" {
		return nil, errors.Join(ErrMissingSecret, errors.New("JWT_SECRET is not set"))
	}
	if cfg.STRIPE_SECRET_KEY == "" {
		return nil, errors.Join(ErrMissingSecret, errors.New("STRIPE_SECRET_KEY is not set"))
	}
	if cfg.STRIPE_WEBHOOK_SECRET == "" {
		return nil, errors.Join(ErrMissingSecret, errors.New("STRIPE_WEBHOOK_SECRET is not set"))
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with production settings.
// Session cookies are marked Secure only in production.
func (c *Config) IsProduction() bool {
	return c.GO_ENV == "production"
}
