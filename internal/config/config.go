package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string
	CatalogPath   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string
	// SessionTTLHours bounds how long finished sessions linger in Redis.
	SessionTTLHours int
}

// Load reads .env if present, then the process environment. Empty RedisAddr
// and DatabaseURL fall back to in-memory store and ledger.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		CatalogPath:     getEnv("CATALOG_PATH", "data/cards.json"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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
