// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

// Package notify delivers password-reset links over SMTP.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/wneessen/go-mail"

	"github.com/smartdish/accounts/internal/account"
)

// Send retry policy. SMTP hiccups are common enough that one immediate
// failure should not bounce the whole forgot-password request.
const (
	sendRetries      = 2
	sendRetryBackoff = 500 * time.Millisecond
)

// Config holds SMTP and link-building settings for the mailer.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
}

// Mailer sends password-reset emails. It implements account.Notifier.
type Mailer struct {
	client      *mail.Client
	from        string
	frontendURL string
	logger      *slog.Logger
}

var _ account.Notifier = (*Mailer)(nil)

// NewMailer creates a Mailer from config.
func NewMailer(cfg Config, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, oops.Errorf("mail host is required")
	}
	if cfg.From == "" {
		return nil, oops.Errorf("mail sender address is required")
	}
	if cfg.FrontendURL == "" {
		return nil, oops.Errorf("frontend URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Port != 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, oops.Code("MAIL_CLIENT_FAILED").With("host", cfg.Host).Wrap(err)
	}

	return &Mailer{
		client:      client,
		from:        cfg.From,
		frontendURL: cfg.FrontendURL,
		logger:      logger,
	}, nil
}

// SendResetLink emails the reset link embedding the token. Transient SMTP
// failures are retried with backoff before the error is surfaced.
func (m *Mailer) SendResetLink(ctx context.Context, email, token string) error {
	msg, err := m.composeReset(email, token)
	if err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(sendRetries, retry.NewExponential(sendRetryBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if sendErr := m.client.DialAndSendWithContext(ctx, msg); sendErr != nil {
			m.logger.Warn("reset email send attempt failed", "error", sendErr)
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").Wrap(err)
	}

	m.logger.Info("password reset email sent", "to", email)
	return nil
}

// composeReset builds the reset message for the address.
func (m *Mailer) composeReset(email, token string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, oops.Code("MAIL_COMPOSE_FAILED").Wrap(err)
	}
	if err := msg.To(email); err != nil {
		return nil, oops.Code("MAIL_COMPOSE_FAILED").With("to", email).Wrap(err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, url.QueryEscape(token))

	msg.Subject("Reset your password")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hello,\n\n"+
			"Reset your SmartDish password by following this link:\n\n"+
			"%s\n\n"+
			"The link is valid for one hour. If you did not ask for a reset,\n"+
			"you can safely ignore this email.\n\n"+
			"The SmartDish team\n",
		link,
	))

	return msg, nil
}
