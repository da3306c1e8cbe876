// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package account

import "context"

// Gateway is the narrow contract this service requires of the record store.
// Implementations map the store's not-found responses to ErrNotFound and
// transport failures to errors carrying ErrUpstreamUnavailable; no other
// logic lives behind this interface.
type Gateway interface {
	// Exists reports whether an account with the email is registered.
	Exists(ctx context.Context, email string) (bool, error)

	// Create stores a new account and returns the created record.
	Create(ctx context.Context, in NewAccount) (*Account, error)

	// GetByID retrieves an account by its store-assigned ID.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetByEmail retrieves an account by email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetAuthView retrieves the hash-bearing auth projection by email.
	GetAuthView(ctx context.Context, email string) (*AuthView, error)

	// ListAll retrieves every account.
	ListAll(ctx context.Context) ([]*Account, error)

	// Update replaces the account with the complete payload.
	Update(ctx context.Context, id int64, payload FullPayload) (*Account, error)

	// Delete removes an account.
	Delete(ctx context.Context, id int64) error

	// IssueResetToken mints a reset token bound to the account. The store
	// owns the expiry window.
	IssueResetToken(ctx context.Context, accountID int64) (string, error)

	// ValidateResetToken asks the store whether the token is usable. The
	// verdict is authoritative; no expiry math happens on this side.
	ValidateResetToken(ctx context.Context, token string) (*TokenValidation, error)

	// SetCredentialHash atomically replaces the account's credential hash.
	SetCredentialHash(ctx context.Context, accountID int64, hash string) error

	// MarkTokenUsed consumes a reset token. Idempotent: calling it twice
	// is harmless.
	MarkTokenUsed(ctx context.Context, token string) error
}

// Notifier delivers the password-reset link to an address.
type Notifier interface {
	SendResetLink(ctx context.Context, email, token string) error
}

// TokenIssuer mints signed, time-bound session tokens carrying the subject
// identity and role claim. Verification happens at the transport edge.
type TokenIssuer interface {
	Issue(email string, role Role) (string, error)
}
