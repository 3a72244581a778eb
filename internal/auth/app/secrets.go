package app

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/sessiongate/internal/auth/service"
)

// InitAuthService resolves the signing key and password salt, either inline
// or from files, and builds the AuthService. Secret material is never logged.
func InitAuthService(cfg Config, logger *slog.Logger) (*service.AuthService, error) {
	key, err := loadSecret(cfg.SecretKey, cfg.SecretKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	salt, err := loadSecret(cfg.PasswordSalt, cfg.PasswordSaltFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load password salt: %w", err)
	}

	auth, err := service.NewAuthService(service.Config{
		SecretKey:  key,
		Algorithm:  cfg.Algorithm,
		Salt:       salt,
		Iterations: cfg.PasswordIterations,
	})
	if err != nil {
		return nil, err
	}

	if len(key) < 32 {
		logger.Warn("signing key is shorter than 32 bytes", "algorithm", auth.Alg())
	}

	logger.Info("auth service configured",
		"algorithm", auth.Alg(),
		"pbkdf2_iterations", cfg.PasswordIterations,
		"key_source", source(cfg.SecretKeyFile),
		"salt_source", source(cfg.PasswordSaltFile),
	)

	return auth, nil
}

// loadSecret returns inline when set, otherwise the contents of path. Only a
// single trailing newline is dropped; any other byte, whitespace included, is
// part of the secret.
func loadSecret(inline, path string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	b = trimNewline(b)
	if len(b) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return b, nil
}

// trimNewline drops one trailing "\n" or "\r\n", as left by editors and echo.
func trimNewline(b []byte) []byte {
	if b, ok := bytes.CutSuffix(b, []byte("\n")); ok {
		return bytes.TrimSuffix(b, []byte("\r"))
	}
	return b
}

func source(path string) string {
	if path != "" {
		return "file"
	}
	return "env"
}
