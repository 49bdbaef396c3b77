package config

import (
	"os"
)

type Config struct {
	AppPort string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	// IdentityBackend selects which identity backend handles
	// credential checks: "local" (default) or "oidc".
	IdentityBackend string

	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string

	// SystemColorScheme mirrors the host preference the theme store
	// falls back to when no preference has been persisted yet.
	// Accepted values: "light", "dark", or empty.
	SystemColorScheme string
}

func Load() Config {

	cfg := Config{

		AppPort: os.Getenv("APP_PORT"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		IdentityBackend: os.Getenv("IDENTITY_BACKEND"),

		OIDCIssuer:       os.Getenv("OIDC_ISSUER"),
		OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),

		SystemColorScheme: os.Getenv("SYSTEM_COLOR_SCHEME"),
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	if cfg.IdentityBackend == "" {
		cfg.IdentityBackend = "local"
	}

	return cfg

}
