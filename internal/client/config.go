package client

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
)

// SimulatedInput drives the menu when not running interactively: log in
// as the demo user, then exit.
const SimulatedInput = "1\nj.jameson\npassword\n4\n"

type Config struct {
	BaseURL     string        // Server base URL (default: https://localhost:8443)
	Timeout     time.Duration // Per request timeout (default: 30s)
	Interactive bool          // Read the menu from stdin; otherwise replay SimulatedInput
	InsecureTLS bool          // Skip certificate verification for self-signed dev servers
	Paths       authsdk.Paths
	LogLevel    string
}

func LoadConfig() Config {
	def := authsdk.DefaultPaths()
	return Config{
		BaseURL:     getEnvOrDefault("TOKENGATE_BASE_URL", "https://localhost:8443"),
		Timeout:     getEnvDurationOrDefault("TOKENGATE_TIMEOUT", authsdk.DefaultTimeout),
		Interactive: getEnvBool("TOKENGATE_INTERACTIVE"),
		InsecureTLS: getEnvBool("TOKENGATE_INSECURE_TLS"),
		Paths: authsdk.Paths{
			Login:     getEnvOrDefault("TOKENGATE_LOGIN_PATH", def.Login),
			Refresh:   getEnvOrDefault("TOKENGATE_REFRESH_PATH", def.Refresh),
			Logout:    getEnvOrDefault("TOKENGATE_LOGOUT_PATH", def.Logout),
			Protected: getEnvOrDefault("TOKENGATE_PROTECTED_PATH", def.Protected),
		},
		LogLevel: getEnvOrDefault("TOKENGATE_LOG_LEVEL", "warn"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && b
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
