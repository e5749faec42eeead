package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultDBPath          = "./dev.db"
	defaultPort            = "8080"
	defaultEnv             = "dev"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultCatalogCacheTTL = 5 * time.Minute
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env             string
	DBPath          string
	Port            string
	AdminAPIKey     string
	LogLevel        string
	LogFormat       string
	CatalogCacheTTL time.Duration
}

// IsDev reports whether the service runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev" || c.Env == "development"
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: local dev values. Existing environment variables win.
	_ = godotenv.Load(".env")

	cfg := Config{
		Env:         getEnv("APP_ENV", defaultEnv),
		DBPath:      getEnv("DB_PATH", defaultDBPath),
		Port:        getEnv("PORT", defaultPort),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", defaultLogFormat),
	}

	cfg.CatalogCacheTTL = defaultCatalogCacheTTL
	if raw := os.Getenv("CATALOG_CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl < 0 {
			log.Warn().Str("value", raw).Msg("invalid CATALOG_CACHE_TTL, using default")
		} else {
			cfg.CatalogCacheTTL = ttl
		}
	}

	if cfg.AdminAPIKey == "" {
		log.Warn().Msg("ADMIN_API_KEY is not set; catalog writes are disabled")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
