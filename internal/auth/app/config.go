package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Revocation backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Addr                string        // Listen address (default: :8443)
	TLSCertFile         string        // Optional: serve HTTPS when set together with TLSKeyFile
	TLSKeyFile          string        // Optional: private key for TLSCertFile
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseFile string // Path to the SQLite database file (default: tokengate.db)
	PepperFile   string // Optional: file holding the password hashing pepper

	Argon2Memory     int // Argon2id memory in KiB (default: 19456)
	Argon2Iterations int // Argon2id passes (default: 2)

	Issuer           string        // Issuer claim for tokens (default: tokengate)
	AccessTTL        time.Duration // Access token lifetime (default: 5m)
	RefreshTTL       time.Duration // Refresh token lifetime (default: 24h)
	AccessAlgorithm  string        // EdDSA or ES256 (default: EdDSA)
	AccessKeyFile    string        // Optional: PKCS#8 PEM private key; generated when empty
	RefreshAlgorithm string        // EdDSA or ES256 (default: ES256)
	RefreshKeyFile   string        // Optional: PKCS#8 PEM private key; generated when empty

	RevocationBackend   string        // sqlite or redis (default: sqlite)
	RedisAddr           string        // Redis address when RevocationBackend is redis (default: localhost:6379)
	RedisConnectTimeout time.Duration // How long to retry the first Redis PING (default: 15s)

	HousekeepingInterval time.Duration // Revocation sweep interval (default: 10m)
	SeedUsers            []service.SeedUser
	MetricsNamespace     string // Prometheus namespace (default: tokengate)
}

// LoadConfig reads the environment. Unparseable numbers fall back to their
// defaults; malformed seed users and invalid combinations are errors.
func LoadConfig() (Config, error) {
	cfg := Config{
		Addr:                getEnvOrDefault("AUTH_ADDR", ":8443"),
		TLSCertFile:         os.Getenv("AUTH_TLS_CERT_FILE"),
		TLSKeyFile:          os.Getenv("AUTH_TLS_KEY_FILE"),
		Env:                 getEnvOrDefault("AUTH_ENV", "dev"),
		LogLevel:            getEnvOrDefault("AUTH_LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("AUTH_LOG_FORMAT", "json"),
		ShutdownGracePeriod: getEnvDurationOrDefault("AUTH_SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseFile: getEnvOrDefault("AUTH_DB_PATH", "tokengate.db"),
		PepperFile:   os.Getenv("AUTH_PEPPER_FILE"),

		Argon2Memory:     getEnvIntOrDefault("AUTH_ARGON2_MEMORY_KIB", 19*1024),
		Argon2Iterations: getEnvIntOrDefault("AUTH_ARGON2_ITERATIONS", 2),

		Issuer:           getEnvOrDefault("AUTH_ISSUER", "tokengate"),
		AccessTTL:        getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", service.DefaultAccessTTL),
		RefreshTTL:       getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_TTL", service.DefaultRefreshTTL),
		AccessAlgorithm:  getEnvOrDefault("AUTH_ACCESS_ALGORITHM", "EdDSA"),
		AccessKeyFile:    os.Getenv("AUTH_ACCESS_KEY_FILE"),
		RefreshAlgorithm: getEnvOrDefault("AUTH_REFRESH_ALGORITHM", "ES256"),
		RefreshKeyFile:   os.Getenv("AUTH_REFRESH_KEY_FILE"),

		RevocationBackend:   strings.ToLower(getEnvOrDefault("AUTH_REVOCATION_BACKEND", BackendSQLite)),
		RedisAddr:           getEnvOrDefault("AUTH_REDIS_ADDR", "localhost:6379"),
		RedisConnectTimeout: getEnvDurationOrDefault("AUTH_REDIS_CONNECT_TIMEOUT", 15*time.Second),

		HousekeepingInterval: getEnvDurationOrDefault("AUTH_HOUSEKEEPING_INTERVAL", 10*time.Minute),
		MetricsNamespace:     getEnvOrDefault("AUTH_METRICS_NAMESPACE", "tokengate"),
	}

	seeds, err := service.ParseSeedUsers(os.Getenv("AUTH_SEED_USERS"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: AUTH_SEED_USERS: %w", ErrInvalidConfig, err)
	}
	cfg.SeedUsers = seeds

	return cfg, cfg.Validate()
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.RevocationBackend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("%w: unknown revocation backend %q", ErrInvalidConfig, c.RevocationBackend)
	}
	for _, alg := range []string{c.AccessAlgorithm, c.RefreshAlgorithm} {
		if alg != jwtx.AlgorithmEdDSA && alg != jwtx.AlgorithmES256 {
			return fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidConfig, alg)
		}
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive", ErrInvalidConfig)
	}
	// Token timestamps are encoded in whole seconds.
	for _, ttl := range []time.Duration{c.AccessTTL, c.RefreshTTL} {
		if ttl < time.Second || ttl%time.Second != 0 {
			return fmt.Errorf("%w: token lifetime %s is not a whole number of seconds", ErrInvalidConfig, ttl)
		}
	}
	if c.Argon2Memory < 8 || c.Argon2Iterations < 1 {
		return fmt.Errorf("%w: argon2 parameters too small", ErrInvalidConfig)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("%w: AUTH_TLS_CERT_FILE and AUTH_TLS_KEY_FILE must be set together", ErrInvalidConfig)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
