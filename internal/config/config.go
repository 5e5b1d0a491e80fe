package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"hospital-management-server/internal/apperrors"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Origin      string
	Environment string

	// DatabaseURL is the DSN of the hosted relational store. Required.
	DatabaseURL string
	// ServiceKey signs session tokens. Required.
	ServiceKey string

	RefreshKey                string
	StorageDir                string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
}

// placeholderMarkers are substrings that identify a value copied from a
// template rather than a real credential. A setting containing one of these
// is treated the same as a missing setting.
var placeholderMarkers = []string{
	"placeholder",
	"changeme",
	"change-me",
	"your-",
	"your_",
	"example.com",
	"<",
}

func isPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}

// requireConcrete returns the value of key, failing with a ConfigurationError
// when the variable is unset or still holds a placeholder.
func requireConcrete(key string) (string, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return "", &apperrors.ConfigurationError{Setting: key, Reason: "is not set"}
	}
	if isPlaceholder(value) {
		return "", &apperrors.ConfigurationError{Setting: key, Reason: "holds a placeholder value; set a concrete one"}
	}
	return value, nil
}

// LoadConfig loads configuration from environment variables. The database
// endpoint and service key must be concrete values; everything else has a
// development default.
func LoadConfig() (*Config, error) {
	databaseURL, err := requireConcrete("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	serviceKey, err := requireConcrete("SERVICE_KEY")
	if err != nil {
		return nil, err
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:5173"),
		Environment:               getEnv("APP_ENV", "development"),
		DatabaseURL:               databaseURL,
		ServiceKey:                serviceKey,
		RefreshKey:                getEnv("REFRESH_KEY", serviceKey+".refresh"),
		StorageDir:                getEnv("STORAGE_DIR", "storage"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
