// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package account

import "errors"

// Domain failure kinds. These are expected control flow, returned as typed
// values and matched with errors.Is; collaborator failures are wrapped with
// oops codes and carry ErrUpstreamUnavailable in their chain.
var (
	// ErrNotFound means the requested account does not exist. Login and
	// forgot-password never surface it verbatim to avoid enumeration.
	ErrNotFound = errors.New("account not found")

	// ErrAlreadyExists means the email is already registered.
	ErrAlreadyExists = errors.New("email already registered")

	// ErrInvalidCredentials covers wrong password, disabled account, and
	// unknown account during login. Deliberately one value for all three.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidOperation means the request shape is unusable, e.g. a
	// password change without the old password.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidOrExpiredToken means the reset token is unknown, expired,
	// or already consumed.
	ErrInvalidOrExpiredToken = errors.New("reset token is invalid, expired, or already used")

	// ErrUpstreamUnavailable marks transient store or notifier failures.
	// Callers may retry.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
