package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port               string
	ProxyProtocol      bool     // accept PROXY protocol headers from a load balancer
	CORSAllowedOrigins []string // origins allowed to call the API from a browser

	// Logging
	LogLevel  string
	LogPretty bool

	// Rate limiting
	RateLimitType   string // "memory" or "redis"
	RateLimit       int    // number of requests allowed
	RateLimitWindow int    // time window in seconds

	// Geolocation provider
	ProviderType    string // "ipinfo" or "mmdb"
	ProviderBaseURL string
	ProviderToken   string
	ProviderTimeout time.Duration

	// Offline MaxMind databases (ProviderType "mmdb")
	MMDBCityPath string
	MMDBASNPath  string

	// Response cache
	DatastoreType string // "csv", "mysql", or "redis"
	DatastorePath string // CSV seed file
	CacheTTL      time.Duration

	// MySQL configuration
	MySQLDSN string

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from a .env file and the environment, with defaults
func Load() *Config {
	// .env is optional; in containers the environment is set directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:               getEnv("PORT", "3000"),
		ProxyProtocol:      getEnvAsBool("PROXY_PROTOCOL", false),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 1),

		ProviderType:    getEnv("PROVIDER_TYPE", "ipinfo"),
		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "https://ipinfo.io/"),
		ProviderToken:   getEnv("PROVIDER_TOKEN", ""),
		ProviderTimeout: getEnvAsSeconds("PROVIDER_TIMEOUT", 10*time.Second),

		MMDBCityPath: getEnv("MMDB_CITY_PATH", "./data/GeoLite2-City.mmdb"),
		MMDBASNPath:  getEnv("MMDB_ASN_PATH", ""),

		DatastoreType: getEnv("DATASTORE_TYPE", "csv"),
		DatastorePath: getEnv("DATASTORE_PATH", "./data/geo_seed.csv"),
		CacheTTL:      getEnvAsSeconds("CACHE_TTL", time.Hour),

		MySQLDSN: getEnv("MYSQL_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an integer; invalid values fall back to the default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool accepts the values understood by strconv.ParseBool
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSeconds reads a whole number of seconds
// "0" is a valid value (no timeout / no expiry).
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(valueStr)
	if err != nil || seconds < 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

// getEnvAsList splits a comma-separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
