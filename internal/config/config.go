package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR"        env-default:":8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	KVTable         string        `env:"KV_TABLE"         env-default:"kv_store"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`

	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   env-separator:","`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`

	Auth   AuthConfig
	Log    LogConfig
	Reflag ReflagConfig
}

// AuthConfig enables bearer tokens when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string        `env:"AUTH_JWT_SECRET"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" env-default:"168h"`
}

func (a AuthConfig) Enabled() bool { return a.JWTSecret != "" }

type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// ReflagConfig controls re-evaluating stored summaries after a limit change.
type ReflagConfig struct {
	Enabled      bool          `env:"SUMMARY_REFLAG_ENABLED" env-default:"false"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL"   env-default:"800ms"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// LoadAuth reads only the auth settings; used by tools that never touch the database.
func LoadAuth() (AuthConfig, error) {
	_ = godotenv.Load()

	var cfg AuthConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return AuthConfig{}, fmt.Errorf("config: read env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.KVTable) == "" {
		errs = append(errs, errors.New("KV_TABLE must not be empty"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or text", c.Log.Format))
	}

	if c.Reflag.Enabled && c.Reflag.PollInterval <= 0 {
		errs = append(errs, errors.New("WORKER_POLL_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
