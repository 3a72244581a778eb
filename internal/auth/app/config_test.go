package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		SecretKey:           "0123456789abcdef0123456789abcdef",
		Algorithm:           "HS256",
		PasswordSalt:        "salt",
		PasswordIterations:  1000,
		DatabaseFile:        ":memory:",
		Env:                 "test",
		LogLevel:            "error",
		LogFormat:           "json",
		Port:                8080,
		ShutdownGracePeriod: time.Second,
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET_KEY", "k")
	t.Setenv("AUTH_PWD_HASH_SALT", "s")
	t.Setenv("AUTH_JWT_ALGORITHM", "")
	t.Setenv("AUTH_PWD_HASH_ITERATIONS", "")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "30")

	cfg := LoadConfig()
	require.Equal(t, "k", cfg.SecretKey)
	require.Equal(t, "s", cfg.PasswordSalt)
	require.Equal(t, "HS256", cfg.Algorithm)
	require.Equal(t, DefaultPasswordHashIterations, cfg.PasswordIterations)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 30*time.Second, cfg.ShutdownGracePeriod)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"missing secret":  func(c *Config) { c.SecretKey = "" },
		"both secrets":    func(c *Config) { c.SecretKeyFile = "/tmp/key" },
		"missing salt":    func(c *Config) { c.PasswordSalt = "" },
		"rsa algorithm":   func(c *Config) { c.Algorithm = "RS256" },
		"zero iterations": func(c *Config) { c.PasswordIterations = 0 },
		"bad port":        func(c *Config) { c.Port = 70000 },
		"no grace period": func(c *Config) { c.ShutdownGracePeriod = 0 },
		"empty database":  func(c *Config) { c.DatabaseFile = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, validConfig().Validate())
}

func TestValidateReportsEverything(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "AUTH_SECRET_KEY")
	require.Contains(t, err.Error(), "AUTH_PWD_HASH_SALT")
	require.Contains(t, err.Error(), "AUTH_JWT_ALGORITHM")
}

func TestLoadSecretFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))

	b, err := loadSecret("", path)
	require.NoError(t, err)
	require.Equal(t, "from-file", string(b))

	b, err = loadSecret("inline", path)
	require.NoError(t, err)
	require.Equal(t, "inline", string(b))

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	_, err = loadSecret("", empty)
	require.Error(t, err)

	_, err = loadSecret("", filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestLoadSecretKeepsWhitespaceBytes(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file []byte
		want []byte
	}{
		{"binary salt", []byte{' ', 0x00, 0xff, '\t', '\n', ' '}, []byte{' ', 0x00, 0xff, '\t', '\n', ' '}},
		{"one newline dropped", []byte("salt\n\n"), []byte("salt\n")},
		{"crlf dropped", []byte(" salt \r\n"), []byte(" salt ")},
		{"no newline", []byte("\tsalt"), []byte("\tsalt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "salt")
			require.NoError(t, os.WriteFile(path, tt.file, 0o600))

			got, err := loadSecret("", path)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewWiresEverything(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	application, err := New(validConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	rr := httptest.NewRecorder()
	application.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}
