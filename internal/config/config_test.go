package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T, args ...string) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(os.Stderr)
	old := os.Args
	os.Args = append([]string{old[0]}, args...)
	t.Cleanup(func() { os.Args = old })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BASE_URL", "ENABLE_HTTPS", "USER_ID", "USER_NAME", "CACHE_DSN", "PREVIEW_DIR", "REQUEST_TIMEOUT", "DEBUG"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	clearEnv(t)
	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL default expected %q, got %q", DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.ServerURL != "http://localhost:5000" {
		t.Fatalf("ServerURL default expected 'http://localhost:5000', got %q", cfg.ServerURL)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Fatalf("RequestTimeout default expected %v, got %v", DefaultRequestTimeout, cfg.RequestTimeout)
	}
	if filepath.Base(cfg.CacheDSN) != "cache.sqlite" {
		t.Fatalf("CacheDSN default must point to cache.sqlite, got %q", cfg.CacheDSN)
	}
	if cfg.PreviewDir == "" {
		t.Fatalf("PreviewDir default must be non-empty")
	}
	if cfg.UserID != "" {
		t.Fatalf("UserID must stay empty without env/flag, got %q", cfg.UserID)
	}
}

func TestNewConfig_EnvValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "example.com:443")
	t.Setenv("ENABLE_HTTPS", "true")
	t.Setenv("USER_ID", "u42")
	t.Setenv("CACHE_DSN", "postgres://u:p@db:5432/cache")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.ServerURL != "https://example.com:443" {
		t.Fatalf("ServerURL expected 'https://example.com:443', got %q", cfg.ServerURL)
	}
	if cfg.UserID != "u42" {
		t.Fatalf("UserID expected from env 'u42', got %q", cfg.UserID)
	}
	if cfg.CacheDSN != "postgres://u:p@db:5432/cache" {
		t.Fatalf("CacheDSN expected from env, got %q", cfg.CacheDSN)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout expected 3s, got %v", cfg.RequestTimeout)
	}
}

func TestNewConfig_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("USER_ID", "from-env")

	resetFlagSet(t, "--user", "from-flag", "--base-url", "store.local:9000", "items")
	cfg := NewConfig()

	if cfg.UserID != "from-flag" {
		t.Fatalf("flag must override env, got %q", cfg.UserID)
	}
	if cfg.BaseURL != "store.local:9000" {
		t.Fatalf("BaseURL expected from flag, got %q", cfg.BaseURL)
	}
	if got := flag.Args(); len(got) != 1 || got[0] != "items" {
		t.Fatalf("remaining args expected [items], got %v", got)
	}
}

func TestNewConfig_InvalidBaseURLFallback(t *testing.T) {
	clearEnv(t)
	// Невалидный BASE_URL (со схемой) должен откатиться на значение по умолчанию
	t.Setenv("BASE_URL", "http://bad:8080")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("invalid BASE_URL must fallback to %q, got %q", DefaultBaseURL, cfg.BaseURL)
	}
	if !strings.HasPrefix(cfg.ServerURL, "http://localhost:5000") {
		t.Fatalf("ServerURL must reflect fallback base, got %q", cfg.ServerURL)
	}
}
