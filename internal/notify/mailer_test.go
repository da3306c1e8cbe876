// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "mailer",
		Password:    "secret",
		From:        "no-reply@smartdish.example",
		FrontendURL: "https://app.smartdish.example",
	}
}

func TestNewMailer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }},
		{name: "missing sender", mutate: func(c *Config) { c.From = "" }},
		{name: "missing frontend URL", mutate: func(c *Config) { c.FrontendURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			m, err := NewMailer(cfg, nil)
			require.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestComposeReset(t *testing.T) {
	m, err := NewMailer(validConfig(), nil)
	require.NoError(t, err)

	msg, err := m.composeReset("user@example.com", "tok/with+chars")
	require.NoError(t, err)

	buf := &strings.Builder{}
	_, err = msg.WriteTo(buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "To: user@example.com")
	assert.Contains(t, raw, "Reset your password")
	// Token must be query-escaped inside the link.
	assert.Contains(t, raw, "reset-password?token=3Dtok%2Fwith%2Bchars")
}

func TestComposeReset_BadAddress(t *testing.T) {
	m, err := NewMailer(validConfig(), nil)
	require.NoError(t, err)

	_, err = m.composeReset("not an address", "tok")
	require.Error(t, err)
}
