package main

import (
	"os"
	"strings"
	"time"
)

// Config collects everything that used to drift between deployment copies of
// this server: CORS policy, credential handling and the store DSN are named
// options resolved once at startup.
type Config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   []byte
	TokenTTL    time.Duration
	// CORSOrigins empty means allow any origin; otherwise an explicit
	// allow-list with credentials enabled.
	CORSOrigins []string
	AutoMigrate bool
	SeedOnStart bool
	LogLevel    string
}

func loadConfig() Config {
	cfg := Config{
		Port:        envOr("PORT", "8080"),
		DatabaseDSN: os.Getenv("DB_DSN"),
		TokenTTL:    24 * time.Hour,
		AutoMigrate: boolEnv("DB_AUTO_MIGRATE", true),
		SeedOnStart: boolEnv("DB_SEED", true),
		LogLevel:    envOr("LOG_LEVEL", "info"),
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	cfg.JWTSecret = []byte(secret)

	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		if d, err := time.ParseDuration(v + "h"); err == nil && d > 0 {
			cfg.TokenTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func boolEnv(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "false", "0", "no":
		return false
	case "true", "1", "yes":
		return true
	}
	return def
}
