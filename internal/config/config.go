// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"skillswap-ledger/pkg/db"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	// RedisAddr enables the idempotency middleware when non-empty.
	RedisAddr string
	JWTSecret string
	// SignupGrant is the credit balance granted to every new wallet.
	SignupGrant int64
	// AllowSkillFallback controls whether accepting a request without an
	// explicit skill falls back to any skill owned by the receiver.
	AllowSkillFallback bool
}

// LoadConfig loads configuration from a local .env file (if present) and the
// environment. It returns an AppConfig instance or an error if any variable
// is invalid.
func LoadConfig() (*AppConfig, error) {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	serverPort := envOrDefault("SERVER_PORT", "8080")

	dbPort, err := strconv.Atoi(envOrDefault("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	signupGrant, err := strconv.ParseInt(envOrDefault("SIGNUP_GRANT", "100"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SIGNUP_GRANT: %w", err)
	}
	if signupGrant < 0 {
		return nil, fmt.Errorf("SIGNUP_GRANT must be non-negative, got %d", signupGrant)
	}

	allowSkillFallback, err := strconv.ParseBool(envOrDefault("SKILL_FALLBACK", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SKILL_FALLBACK: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     envOrDefault("DB_USER", "user"),
			Password: envOrDefault("DB_PASSWORD", "password"),
			DBName:   envOrDefault("DB_NAME", "ledgerdb"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		JWTSecret:          envOrDefault("JWT_SECRET", "supersecret"),
		SignupGrant:        signupGrant,
		AllowSkillFallback: allowSkillFallback,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
