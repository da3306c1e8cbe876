// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdish/accounts/internal/config"
)

const validYAML = `
listen_addr: ":9090"
log_format: text
store:
  url: http://store.internal:8080
  timeout: 2s
mail:
  host: smtp.internal
  port: 2525
  from: no-reply@smartdish.example
  frontend_url: https://app.smartdish.example
auth:
  jwt_secret: super-secret
  token_ttl: 12h
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	return flags
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validYAML), nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://store.internal:8080", cfg.Store.URL)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "smtp.internal", cfg.Mail.Host)
	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)

	// Defaults fill what the file leaves out.
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	flags := newFlags()
	require.NoError(t, flags.Parse([]string{
		"--listen-addr", ":7070",
		"--store-timeout", "9s",
	}))

	cfg, err := config.Load(writeConfig(t, validYAML), flags)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, 9*time.Second, cfg.Store.Timeout)
	// Untouched flags do not clobber file values.
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://store.internal:8080", cfg.Store.URL)
}

func TestLoad_FlagsAlone(t *testing.T) {
	flags := newFlags()
	require.NoError(t, flags.Parse([]string{
		"--store-url", "http://store.internal:8080",
		"--jwt-secret", "super-secret",
		"--mail-host", "smtp.internal",
		"--mail-from", "no-reply@smartdish.example",
		"--mail-frontend-url", "https://app.smartdish.example",
	}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "http://store.internal:8080", cfg.Store.URL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing store url", `
log_format: json
mail: {host: smtp.internal, from: a@b, frontend_url: https://x}
auth: {jwt_secret: s}
`},
		{"missing jwt secret", `
store: {url: http://store.internal}
mail: {host: smtp.internal, from: a@b, frontend_url: https://x}
`},
		{"bad log format", `
log_format: verbose
store: {url: http://store.internal}
mail: {host: smtp.internal, from: a@b, frontend_url: https://x}
auth: {jwt_secret: s}
`},
		{"missing mail host", `
store: {url: http://store.internal}
mail: {from: a@b, frontend_url: https://x}
auth: {jwt_secret: s}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.yaml), nil)
			require.Error(t, err)
		})
	}
}
