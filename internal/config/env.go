package config

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"codeberg.org/edtech/portal/internal/logger"
	"github.com/joho/godotenv"
)

const (
	defaultAPIURL         = "http://localhost:5000/api"
	defaultPort           = "3000"
	defaultLoginRateLimit = "10-M"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	sessionSecret := os.Getenv("SESSION_SECRET")
	environment := os.Getenv("ENVIRONMENT")

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if environment == "" {
		environment = "development"
	}

	if sessionSecret == "" {
		if environment == "production" {
			return nil, fmt.Errorf("SESSION_SECRET environment variable is required in production")
		}

		logger.Warn("SESSION_SECRET not set, deriving the flash cookie key from JWT_SECRET",
			"environment", environment,
		)

		sessionSecret = deriveSessionSecret(jwtSecret)
	}

	return &Config{
		JWTSecret:      jwtSecret,
		SessionSecret:  sessionSecret,
		APIURL:         strings.TrimRight(getenv("API_URL", defaultAPIURL), "/"),
		Port:           getenv("PORT", defaultPort),
		Environment:    environment,
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		LoginRateLimit: getenv("LOGIN_RATE_LIMIT", defaultLoginRateLimit),
	}, nil
}

// reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// flash cookies never get signed with the token signing secret itself
func deriveSessionSecret(jwtSecret string) string {
	mac := hmac.New(sha256.New, []byte(jwtSecret))
	mac.Write([]byte("portal flash cookie key"))

	return hex.EncodeToString(mac.Sum(nil))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
