package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultBaseURL - адрес удалённого хранилища по умолчанию.
const DefaultBaseURL = "localhost:5000"

// DefaultRequestTimeout ограничивает один HTTP-запрос к хранилищу.
const DefaultRequestTimeout = 10 * time.Second

type Config struct {
	// Удалённое хранилище
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	ServerURL   string `env:"-"`

	// Действующий пользователь
	UserID   string `env:"USER_ID"`
	UserName string `env:"USER_NAME"`

	// Локальное состояние
	CacheDSN   string `env:"CACHE_DSN"`
	PreviewDir string `env:"PREVIEW_DIR"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	Debug          bool          `env:"DEBUG"`
	Version        bool          `env:"-"` // show client version and exit (flag only)
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags по умолчанию берут значения из env
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the HomeLedger store (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "use https scheme for the store")
	flag.StringVar(&cfg.UserID, "user", cfg.UserID, "acting user id")
	flag.StringVar(&cfg.UserName, "user-name", cfg.UserName, "acting user display name")
	flag.StringVar(&cfg.CacheDSN, "cache-db", cfg.CacheDSN, "local snapshot DB: sqlite path or postgres DSN")
	flag.StringVar(&cfg.PreviewDir, "preview-dir", cfg.PreviewDir, "directory for upload previews")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "timeout of one request to the store")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "verbose logging")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	// BaseURL только в виде "address:port" (без схемы и пути), иначе значение по умолчанию
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.CacheDSN == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		cfg.CacheDSN = filepath.Join(base, "HomeLedger", "cache.sqlite")
	}
	if cfg.PreviewDir == "" {
		cfg.PreviewDir = filepath.Join(os.TempDir(), "homeledger-previews")
	}
}
