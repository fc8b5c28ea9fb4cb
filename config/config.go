package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	PostgresURL    string
	GinMode        string
	Debug          bool
}

// Load reads the process environment, after loading an optional .env
// file. A missing .env is not an error.
func Load() Config {
	godotenv.Load()

	return Config{
		Port:           getString("PORT", "5000"),
		AllowedOrigins: strings.Split(getString("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		PostgresURL:    getString("POSTGRES_URL", ""),
		GinMode:        getString("GIN_MODE", ""),
		Debug:          getBool("DEBUG", false),
	}
}

func getString(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
