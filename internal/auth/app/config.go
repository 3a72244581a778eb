package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultPasswordHashIterations is the PBKDF2 work factor when
// AUTH_PWD_HASH_ITERATIONS is unset.
const DefaultPasswordHashIterations = 100_000

type Config struct {
	// Token signing. Exactly one of SecretKey / SecretKeyFile is required.
	SecretKey     string // AUTH_SECRET_KEY
	SecretKeyFile string // AUTH_SECRET_KEY_FILE: path to a file holding the key
	Algorithm     string // AUTH_JWT_ALGORITHM: HS256, HS384 or HS512 (default: HS256)

	// Password hashing. Exactly one of PasswordSalt / PasswordSaltFile is required.
	PasswordSalt       string // AUTH_PWD_HASH_SALT
	PasswordSaltFile   string // AUTH_PWD_HASH_SALT_FILE
	PasswordIterations int    // AUTH_PWD_HASH_ITERATIONS (default: 100000)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./auth.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		SecretKey:           os.Getenv("AUTH_SECRET_KEY"),
		SecretKeyFile:       os.Getenv("AUTH_SECRET_KEY_FILE"),
		Algorithm:           getEnvOrDefault("AUTH_JWT_ALGORITHM", "HS256"),
		PasswordSalt:        os.Getenv("AUTH_PWD_HASH_SALT"),
		PasswordSaltFile:    os.Getenv("AUTH_PWD_HASH_SALT_FILE"),
		PasswordIterations:  getEnvIntOrDefault("AUTH_PWD_HASH_ITERATIONS", DefaultPasswordHashIterations),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate reports every configuration problem at once. A service that
// fails validation must not start.
func (c Config) Validate() error {
	var errs []error

	if err := exactlyOne("AUTH_SECRET_KEY", c.SecretKey, "AUTH_SECRET_KEY_FILE", c.SecretKeyFile); err != nil {
		errs = append(errs, err)
	}
	if err := exactlyOne("AUTH_PWD_HASH_SALT", c.PasswordSalt, "AUTH_PWD_HASH_SALT_FILE", c.PasswordSaltFile); err != nil {
		errs = append(errs, err)
	}

	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("AUTH_JWT_ALGORITHM: unsupported algorithm %q", c.Algorithm))
	}

	if c.PasswordIterations <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_PWD_HASH_ITERATIONS: must be positive, got %d", c.PasswordIterations))
	}
	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("AUTH_DATABASE_FILE: must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: out of range: %d", c.Port))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_GRACE_PERIOD: must be positive, got %s", c.ShutdownGracePeriod))
	}

	return errors.Join(errs...)
}

func exactlyOne(keyA, a, keyB, b string) error {
	switch {
	case a == "" && b == "":
		return fmt.Errorf("%s or %s is required", keyA, keyB)
	case a != "" && b != "":
		return fmt.Errorf("%s and %s are mutually exclusive", keyA, keyB)
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
