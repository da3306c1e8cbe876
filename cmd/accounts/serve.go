// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartdish/accounts/internal/account"
	"github.com/smartdish/accounts/internal/api"
	"github.com/smartdish/accounts/internal/config"
	"github.com/smartdish/accounts/internal/logging"
	"github.com/smartdish/accounts/internal/notify"
	"github.com/smartdish/accounts/internal/observability"
	"github.com/smartdish/accounts/internal/store"
	"github.com/smartdish/accounts/internal/token"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account service",
		Long: `Start the HTTP account service. Configuration comes from the YAML
file given with --config, overridden by command-line flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg, cmd)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	logging.SetDefault("accounts", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting account service",
		"listen_addr", cfg.ListenAddr,
		"store_url", cfg.Store.URL,
		"log_format", cfg.LogFormat,
	)

	gateway, err := store.NewClient(cfg.Store.URL, cfg.Store.Timeout, logger.With("component", "store"))
	if err != nil {
		return fmt.Errorf("building store client: %w", err)
	}

	mailer, err := notify.NewMailer(notify.Config{
		Host:        cfg.Mail.Host,
		Port:        cfg.Mail.Port,
		Username:    cfg.Mail.Username,
		Password:    cfg.Mail.Password,
		From:        cfg.Mail.From,
		FrontendURL: cfg.Mail.FrontendURL,
	}, logger.With("component", "mailer"))
	if err != nil {
		return fmt.Errorf("building mailer: %w", err)
	}

	issuer, err := token.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("building token issuer: %w", err)
	}

	svc, err := account.NewServiceWithLogger(gateway, mailer, account.NewArgon2idHasher(), issuer, logger)
	if err != nil {
		return fmt.Errorf("building account service: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observability server comes up first so readiness reflects the edge.
	var obsServer *observability.Server
	var metrics *observability.Metrics
	var apiUp atomic.Bool
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, apiUp.Load)
		metrics = obsServer.Metrics()

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return fmt.Errorf("starting observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	handler, err := api.NewHandler(svc, issuer, metrics, logger.With("component", "api"))
	if err != nil {
		return fmt.Errorf("building api handler: %w", err)
	}

	apiServer, err := api.NewServer(cfg.ListenAddr, handler, logger)
	if err != nil {
		return fmt.Errorf("building api server: %w", err)
	}
	apiErrChan, err := apiServer.Start()
	if err != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if obsServer != nil {
			if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
				logger.Warn("failed to stop observability server during cleanup", "error", stopErr)
			}
		}
		return fmt.Errorf("starting api server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")
	apiUp.Store(true)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Account service started")
	logger.Info("account service ready", "addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels the run context when a server's error channel
// reports a failure. A closed channel means a graceful stop.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
