// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

// Package config loads service configuration from a YAML file with
// command-line flag overrides.
package config

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full service configuration.
type Config struct {
	ListenAddr  string      `mapstructure:"listen_addr"`
	MetricsAddr string      `mapstructure:"metrics_addr"`
	LogFormat   string      `mapstructure:"log_format"`
	Store       StoreConfig `mapstructure:"store"`
	Mail        MailConfig  `mapstructure:"mail"`
	Auth        AuthConfig  `mapstructure:"auth"`
}

// StoreConfig points at the remote record store.
type StoreConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MailConfig configures the SMTP relay used for reset links.
type MailConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// AuthConfig configures session token signing.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// Default returns the configuration baseline that files and flags merge
// over.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		MetricsAddr: "127.0.0.1:9100",
		LogFormat:   "json",
		Store: StoreConfig{
			Timeout: 5 * time.Second,
		},
		Mail: MailConfig{
			Port: 587,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
	}
}

// flagKeys maps command-line flag names onto configuration keys. Only
// listed flags participate in the override merge.
var flagKeys = map[string]string{
	"listen-addr":       "listen_addr",
	"metrics-addr":      "metrics_addr",
	"log-format":        "log_format",
	"store-url":         "store.url",
	"store-timeout":     "store.timeout",
	"mail-host":         "mail.host",
	"mail-port":         "mail.port",
	"mail-username":     "mail.username",
	"mail-password":     "mail.password",
	"mail-from":         "mail.from",
	"mail-frontend-url": "mail.frontend_url",
	"jwt-secret":        "auth.jwt_secret",
	"token-ttl":         "auth.token_ttl",
}

// RegisterFlags declares every overridable setting on the flag set.
func RegisterFlags(flags *pflag.FlagSet) {
	def := Default()
	flags.String("listen-addr", def.ListenAddr, "API listen address")
	flags.String("metrics-addr", def.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.String("log-format", def.LogFormat, "log format (json or text)")
	flags.String("store-url", "", "record store base URL")
	flags.Duration("store-timeout", def.Store.Timeout, "record store request timeout")
	flags.String("mail-host", "", "SMTP host")
	flags.Int("mail-port", def.Mail.Port, "SMTP port")
	flags.String("mail-username", "", "SMTP username")
	flags.String("mail-password", "", "SMTP password")
	flags.String("mail-from", "", "reset mail sender address")
	flags.String("mail-frontend-url", "", "frontend base URL embedded in reset links")
	flags.String("jwt-secret", "", "session token signing secret")
	flags.Duration("token-ttl", def.Auth.TokenTTL, "session token validity window")
}

// Load merges, in increasing precedence: defaults, the YAML file at path
// (if non-empty), then changed command-line flags. The result is
// validated before being returned.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			mapped, ok := flagKeys[key]
			if !ok {
				return "", nil
			}
			return mapped, value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "mapstructure",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot run without.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen_addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log_format must be json or text, got %q", c.LogFormat)
	}
	if c.Store.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("store.url is required")
	}
	if c.Store.Timeout <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("store.timeout must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.token_ttl must be positive")
	}
	if c.Mail.Host == "" {
		return oops.Code("CONFIG_INVALID").Errorf("mail.host is required")
	}
	if c.Mail.From == "" {
		return oops.Code("CONFIG_INVALID").Errorf("mail.from is required")
	}
	if c.Mail.FrontendURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("mail.frontend_url is required")
	}
	return nil
}
