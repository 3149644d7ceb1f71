package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgcfg "github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	DatabaseURL string

	JWTSecret  []byte
	JWTExpires time.Duration

	ClientURL string

	Email EmailConfig

	KafkaBrokers []string

	ES ESConfig

	SentryDSN string
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether SMTP credentials are configured.
func (c EmailConfig) Enabled() bool {
	return c.User != "" && c.Password != ""
}

type ESConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

func (c ESConfig) Enabled() bool { return c.URL != "" }

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config_env_file", "reason", "cannot read .env", "error", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var req pkgcfg.Required

	cfg := &Config{
		Env:      pkgcfg.EnvDefault("APP_ENV", "development"),
		Port:     pkgcfg.EnvIntDefault("PORT", 5000),
		LogLevel: pkgcfg.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: req.Env("DATABASE_URL"),

		JWTSecret:  []byte(req.Env("JWT_SECRET")),
		JWTExpires: pkgcfg.EnvDurationDefault("JWT_EXPIRES", 30*24*time.Hour),

		ClientURL: req.Env("CLIENT_URL"),

		Email: EmailConfig{
			Host:     pkgcfg.EnvDefault("EMAIL_HOST", "smtp.gmail.com"),
			Port:     pkgcfg.EnvIntDefault("EMAIL_PORT", 587),
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
		},

		KafkaBrokers: pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),

		ES: ESConfig{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    pkgcfg.EnvDefault("ES_INDEX", "products"),
		},

		SentryDSN: os.Getenv("SENTRY_DSN"),
	}
	cfg.Email.From = pkgcfg.EnvDefault("EMAIL_FROM", cfg.Email.User)

	if err := req.Err(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
