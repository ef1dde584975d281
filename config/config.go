// Package config reads application configuration from the environment.
// File: config/config.go
package config

import (
	"os"

	"github.com/joho/godotenv"

	"lineup-board/logger"
)

// Config holds everything the server needs to start.
type Config struct {
	Port           string // HTTP listen port
	DBPath         string // sqlite database file
	ApplicationURL string // public base URL, used for board join links / QR codes
	Env            string // "production" discards debug logs
}

// Load reads .env (if present) and the process environment, falling back
// to localhost defaults so the server runs out of the box.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("config: no .env file loaded: %v", err)
	}

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DBPath:         getenv("DB_PATH", "lineup.db"),
		ApplicationURL: getenv("APPLICATION_URL", "http://localhost:8080"),
		Env:            getenv("APP_ENV", "development"),
	}
	logger.Info.Printf("config: port=%s db=%s env=%s", cfg.Port, cfg.DBPath, cfg.Env)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
