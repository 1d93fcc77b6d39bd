package util

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/atento/knowledge/pkg/logger"
)

// LoadEnv loads a .env file if present; otherwise the process environment
// is used as-is.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvString(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt returns the variable parsed as an integer; unset or
// unparsable values yield the fallback.
func GetEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func GetEnvNumeric(key string, fallback int) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return float64(fallback)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return float64(fallback)
	}
	return parsed
}

func GetEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
