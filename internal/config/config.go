// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds MongoDB connection settings
type DatabaseConfig struct {
	URI  string
	Name string
}

// CacheConfig holds feed cache settings. An empty RedisAddr selects the
// in-process cache; a zero TTL disables passive expiry entirely.
type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret       string
	TokenExpiration time.Duration
}

// Config holds the complete application configuration
type Config struct {
	Server   *ServerConfig
	Database *DatabaseConfig
	Cache    *CacheConfig
	Auth     *AuthConfig
	Debug    bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envLocations := []string{
		".env",       // Current directory
		"../../.env", // Project root when running from cmd/server
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		// Silent failure if no .env exists, which is fine
		_ = godotenv.Load()
	}

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := &DatabaseConfig{
		URI:  getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		Name: getEnvOrDefault("MONGODB_DB", "feedstream"),
	}

	cacheConfig := &CacheConfig{
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}
	if ttlStr := os.Getenv("CACHE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL %q: %w", ttlStr, err)
		}
		cacheConfig.TTL = ttl
	}

	authConfig := &AuthConfig{
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenExpiration: 24 * time.Hour,
	}
	if authConfig.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if expStr := os.Getenv("TOKEN_EXPIRATION"); expStr != "" {
		exp, err := time.ParseDuration(expStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_EXPIRATION %q: %w", expStr, err)
		}
		authConfig.TokenExpiration = exp
	}

	config := &Config{
		Server:   serverConfig,
		Database: dbConfig,
		Cache:    cacheConfig,
		Auth:     authConfig,
		Debug:    os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
