/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures server parameters by reading operating system environment variables,
including the running environment, port, CORS allowed origins, and the invite time-to-live.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultInviteTTL is the lifetime of a game invite when INVITE_TTL_SECONDS is not set.
const DefaultInviteTTL = 90 * time.Second

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// Matchmaking Settings
	InviteTTL time.Duration
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type
// conversions and validation. It returns a pointer to the AppConfig struct and any
// error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Port
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	// AllowedOrigins
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Matchmaking Settings ---
	// InviteTTL
	ttlStr := os.Getenv("INVITE_TTL_SECONDS")
	if ttlStr == "" {
		cfg.InviteTTL = DefaultInviteTTL
	} else {
		ttlSeconds, err := strconv.Atoi(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid INVITE_TTL_SECONDS environment variable: %w", err)
		}
		if ttlSeconds <= 0 {
			return nil, fmt.Errorf("INVITE_TTL_SECONDS must be a positive number of seconds, got %d", ttlSeconds)
		}
		cfg.InviteTTL = time.Duration(ttlSeconds) * time.Second
	}

	return cfg, nil
}
