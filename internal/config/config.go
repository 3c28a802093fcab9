// Package config loads service settings from an optional YAML file with
// AUTHFLOW_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/authflow/internal/utils"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "authflow.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AUTHFLOW_"

// Latency holds the simulated remote-call delay per screen.
type Latency struct {
	Login          time.Duration `yaml:"login" env:"LOGIN"`
	Registration   time.Duration `yaml:"registration" env:"REGISTRATION"`
	ForgotPassword time.Duration `yaml:"forgot_password" env:"FORGOT_PASSWORD"`
	ResetPassword  time.Duration `yaml:"reset_password" env:"RESET_PASSWORD"`
}

// Config is the full service configuration.
type Config struct {
	Addr    string `yaml:"addr" env:"ADDR"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	LogLevel      string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile       string `yaml:"log_file" env:"LOG_FILE"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb" env:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `yaml:"log_max_backups" env:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `yaml:"log_max_age_days" env:"LOG_MAX_AGE_DAYS"`
	LogCompress   bool   `yaml:"log_compress" env:"LOG_COMPRESS"`

	SessionKeyFile string `yaml:"session_key_file" env:"SESSION_KEY_FILE"`
	SessionKeyHex  string `yaml:"session_key_hex" env:"SESSION_KEY_HEX"`

	PageTTL       time.Duration `yaml:"page_ttl" env:"PAGE_TTL"`
	NoticeTTL     time.Duration `yaml:"notice_ttl" env:"NOTICE_TTL"`
	ResetTokenTTL time.Duration `yaml:"reset_token_ttl" env:"RESET_TOKEN_TTL"`

	Latency Latency `yaml:"latency" envPrefix:"LATENCY_"`

	ForgotSuccessRate float64 `yaml:"forgot_success_rate" env:"FORGOT_SUCCESS_RATE"`
	ExposeResetLinks  bool    `yaml:"expose_reset_links" env:"EXPOSE_RESET_LINKS"`

	// Accounts maps fixture emails to the passwords the login screen accepts.
	Accounts       map[string]string `yaml:"accounts"`
	ReservedEmails []string          `yaml:"reserved_emails" env:"RESERVED_EMAILS" envSeparator:","`

	TLSCert string `yaml:"tls_cert" env:"TLS_CERT"`
	TLSKey  string `yaml:"tls_key" env:"TLS_KEY"`

	OTelEndpoint string `yaml:"otel_endpoint" env:"OTEL_ENDPOINT"`
}

// Default returns the built-in settings, matching the demo fixtures.
func Default() Config {
	return Config{
		Addr:           ":8080",
		BaseURL:        "http://localhost:8080",
		LogLevel:       "info",
		LogMaxSizeMB:   100,
		LogMaxBackups:  3,
		LogMaxAgeDays:  28,
		LogCompress:    true,
		SessionKeyFile: "session.key",
		PageTTL:        30 * time.Minute,
		NoticeTTL:      10 * time.Second,
		ResetTokenTTL:  time.Hour,
		Latency: Latency{
			Login:          1500 * time.Millisecond,
			Registration:   1500 * time.Millisecond,
			ForgotPassword: 1500 * time.Millisecond,
			ResetPassword:  time.Second,
		},
		ForgotSuccessRate: 0.7,
		Accounts:          map[string]string{"user@example.com": "password123"},
		ReservedEmails:    []string{"test@example.com"},
	}
}

// Load applies, in order: defaults, the YAML file at path (skipped when it
// does not exist), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(utils.ResolvePath(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			// yaml.v3 merges into non-nil maps; a file's accounts replace the fixtures.
			fixtures := cfg.Accounts
			cfg.Accounts = nil
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			if cfg.Accounts == nil {
				cfg.Accounts = fixtures
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.PageTTL <= 0 {
		errs = append(errs, errors.New("page_ttl must be positive"))
	}
	if c.NoticeTTL <= 0 {
		errs = append(errs, errors.New("notice_ttl must be positive"))
	}
	if c.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("reset_token_ttl must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"login":           c.Latency.Login,
		"registration":    c.Latency.Registration,
		"forgot_password": c.Latency.ForgotPassword,
		"reset_password":  c.Latency.ResetPassword,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("latency.%s must not be negative", name))
		}
	}
	if c.ForgotSuccessRate < 0 || c.ForgotSuccessRate > 1 {
		errs = append(errs, errors.New("forgot_success_rate must be within [0, 1]"))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, errors.New("tls_cert and tls_key must be set together"))
	}
	for email, password := range c.Accounts {
		if email == "" || password == "" {
			errs = append(errs, fmt.Errorf("account %q needs email and password", email))
		}
	}
	return errors.Join(errs...)
}

// LogConfig projects the logging settings.
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.LogLevel,
		FilePath:   c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}
