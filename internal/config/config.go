package config

import (
	"errors"
	"os"
	"time"
)

// TokenTTL is the fixed lifetime of an access token.
const TokenTTL = 60 * time.Minute

var ErrJWTSecretRequired = errors.New("JWT_SECRET must be set")

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassword string

	OTLPEndpoint string
	OTLPInsecure bool
}

// Load reads configuration from the environment. There is no fallback for
// JWT_SECRET: a process without a signing secret refuses to start.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/userhub?parseTime=true"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiry:     TokenTTL,
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:  os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrJWTSecretRequired
	}

	return cfg, nil
}

// SeedAdmin reports whether a bootstrap admin account was configured.
func (c Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
