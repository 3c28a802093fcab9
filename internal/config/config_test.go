package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
page_ttl: 5m
latency:
  login: 10ms
accounts:
  a@b.io: secret
reserved_emails: [taken@b.io]
`), 0o600))

	t.Setenv("AUTHFLOW_ADDR", ":9100")
	t.Setenv("AUTHFLOW_LATENCY_REGISTRATION", "20ms")
	t.Setenv("AUTHFLOW_RESERVED_EMAILS", "x@y.io,z@y.io")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.PageTTL)
	assert.Equal(t, 10*time.Millisecond, cfg.Latency.Login)
	assert.Equal(t, 20*time.Millisecond, cfg.Latency.Registration)
	assert.Equal(t, time.Second, cfg.Latency.ResetPassword)
	assert.Equal(t, map[string]string{"a@b.io": "secret"}, cfg.Accounts)
	assert.Equal(t, []string{"x@y.io", "z@y.io"}, cfg.ReservedEmails)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"ok", func(*Config) {}, ""},
		{"empty addr", func(c *Config) { c.Addr = " " }, "addr is required"},
		{"page ttl", func(c *Config) { c.PageTTL = 0 }, "page_ttl must be positive"},
		{"rate", func(c *Config) { c.ForgotSuccessRate = 1.5 }, "forgot_success_rate"},
		{"negative latency", func(c *Config) { c.Latency.Login = -time.Second }, "latency.login"},
		{"tls half", func(c *Config) { c.TLSCert = "cert.pem" }, "tls_cert and tls_key"},
		{"account", func(c *Config) { c.Accounts = map[string]string{"a@b.io": ""} }, `account "a@b.io"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unterminated"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}
