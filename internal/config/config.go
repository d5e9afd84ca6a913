// Package config centralizes environment-driven server configuration.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all runtime configuration, read from the environment.
// Call godotenv.Load before Load when a .env file is in use.
type Config struct {
	Environment string
	Port        string

	DatabaseURL string

	JWTSecret []byte

	LogLevel string
	LogFile  string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	AllowedOrigins []string
}

// Load reads configuration from the environment. JWT_SECRET is the only
// required variable.
func Load() (*Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "glimpse")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	origins := []string{"*"}
	if o := os.Getenv("ALLOWED_ORIGINS"); o != "" {
		origins = origins[:0]
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}

	return &Config{
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		Port:           getEnvOrDefault("PORT", "8787"),
		DatabaseURL:    databaseURL,
		JWTSecret:      []byte(jwtSecret),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:        getEnvOrDefault("LOG_FILE", "server.log"),
		RedisHost:      os.Getenv("REDIS_HOST"),
		RedisPort:      getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AllowedOrigins: origins,
	}, nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
