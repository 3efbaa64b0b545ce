package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	GoogleMapsAPIKey string
	GeocodeCachePath string

	FetchTimeoutSec   int
	MaxRetries        int
	RetryBaseDelaySec int
	UserAgent         string

	SettingsPath string
	DataDir      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "suumo_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodeCachePath: getEnv("GEOCODE_CACHE_PATH", "./data/geocoding_api_history.json"),

		FetchTimeoutSec:   getEnvInt("FETCH_TIMEOUT_SEC", 30),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelaySec: getEnvInt("RETRY_BASE_DELAY_SEC", 10),
		UserAgent: getEnv("USER_AGENT",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),

		SettingsPath: getEnv("SETTINGS_PATH", "./setting.yml"),
		DataDir:      getEnv("DATA_DIR", "./data"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
