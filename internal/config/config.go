package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// Config holds the full server configuration, populated from the
// environment with sane defaults for local development.
type Config struct {
	Addr         string
	DBPath       string
	SessionsPath string
	FolderPath   string
	LogLevel     slog.Level
	Workers      int
	QueueSize    int
	CorsConfig   cors.Options
}

// Load reads an optional .env file (ENV_FILE, default ".env") and builds the
// configuration from the environment.
func Load() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is fine; the environment may be set directly
	_ = godotenv.Load(envFile)

	return Config{
		Addr:         fmt.Sprintf(":%s", getEnv("PORT", "5000")),
		DBPath:       getEnv("DB_PATH", "filedepot.db"),
		SessionsPath: getEnv("SESSIONS_PATH", "sessions.db"),
		FolderPath:   getEnv("FOLDER_PATH", "/tmp/files_manager"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Workers:      getEnvInt("WORKERS", 4),
		QueueSize:    getEnvInt("QUEUE_SIZE", 256),
		CorsConfig:   corsConfig(),
	}
}

// getEnv returns the env value for key or the fallback
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt returns the integer env value for key or the fallback
func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseLogLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func corsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "*")},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}
}
