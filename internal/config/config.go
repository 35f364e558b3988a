package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port      string
	PublicURL string
	LogLevel  string
	LogFormat string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlite-nocgo, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Authorizer configuration
	AuthzURL       string
	AuthzClientID  string
	AuthzJWTSecret string

	// Object storage for application documents; empty bucket disables uploads
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3PresignExpires time.Duration
}

// Load loads configuration from environment variables, after optionally
// reading the file named by ENV_FILE into the environment.
func Load() (*Config, error) {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		PublicURL:         strings.TrimSuffix(getEnv("PUBLIC_URL", "http://localhost:3000"), "/"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		DBType:            getEnv("DB_TYPE", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		AuthzURL:          strings.TrimSuffix(getEnv("AUTHZ_URL", ""), "/"),
		AuthzClientID:     getEnv("AUTHZ_CLIENT_ID", ""),
		AuthzJWTSecret:    getEnv("AUTHZ_JWT_SECRET", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3PresignExpires:  getEnvAsDuration("S3_PRESIGN_EXPIRES", 15*time.Minute),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBUser == "" && !cfg.IsSQLite() {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.AuthzURL == "" {
		return nil, fmt.Errorf("AUTHZ_URL is required")
	}
	if cfg.AuthzClientID == "" {
		return nil, fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}

	return cfg, nil
}

// IsSQLite reports whether the configured database is a file-backed SQLite database
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite-nocgo"
}

// StorageEnabled reports whether document uploads are configured
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
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

// getEnvAsDuration gets an environment variable as a time.Duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
