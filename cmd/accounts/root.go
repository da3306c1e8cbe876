// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the accounts CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "SmartDish account service",
		Long: `The SmartDish account service is the front door for user accounts:
registration, login, profile updates, and the password-reset flow.
Durable records live in the remote record store; this service owns
credential hashing, session tokens, and reset-link delivery.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("accounts %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
