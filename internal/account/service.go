// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/smartdish/accounts/pkg/errutil"
)

// dummyCredentialHash is verified against when a login targets an unknown
// email, so that the unknown-account and wrong-password paths cost the same.
// It is a fake hash that can never match any password.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyCredentialHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service orchestrates the account use cases against the record store. It
// is stateless between requests; concurrent calls share nothing but the
// injected collaborators.
type Service struct {
	gateway  Gateway
	notifier Notifier
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   *slog.Logger
}

// NewService creates a Service logging to the default slog logger.
func NewService(gateway Gateway, notifier Notifier, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(gateway, notifier, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(gateway Gateway, notifier Notifier, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) (*Service, error) {
	if gateway == nil {
		return nil, oops.Errorf("store gateway is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		gateway:  gateway,
		notifier: notifier,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}, nil
}

// Register creates an account. The secret is hashed here; the store never
// receives plaintext. Returns ErrAlreadyExists for a duplicate email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	exists, err := s.gateway.Exists(ctx, in.Email)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "Exists").
			Wrap(err)
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Secret)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	created, err := s.gateway.Create(ctx, NewAccount{
		Email:          in.Email,
		CredentialHash: hash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		DietIDs:        in.DietIDs,
		AllergenIDs:    in.AllergenIDs,
		CuisineIDs:     in.CuisineIDs,
	})
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "Create").
			Wrap(err)
	}

	s.logger.Info("account registered", "account_id", created.ID, "email", created.Email)
	return created, nil
}

// Login authenticates the credentials and returns a session token. Unknown
// email, disabled account, and wrong password all yield the identical
// ErrInvalidCredentials; only the internal log distinguishes them.
func (s *Service) Login(ctx context.Context, email, secret string) (string, error) {
	view, err := s.gateway.GetAuthView(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn a verification against the dummy hash so the unknown
			// account path is not observably faster.
			_, _ = s.hasher.Verify(secret, dummyCredentialHash)
			s.logger.Info("login rejected: unknown email", "email", email)
			return "", ErrInvalidCredentials
		}
		return "", oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "GetAuthView").
			Wrap(err)
	}

	// The active check always precedes verification so a disabled account
	// with the right password is indistinguishable from a wrong password.
	if !view.Active {
		s.logger.Info("login rejected: account disabled", "email", email)
		return "", ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(secret, view.CredentialHash)
	if err != nil {
		return "", oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "Verify").
			Wrap(err)
	}
	if !ok {
		s.logger.Info("login rejected: wrong password", "email", email)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(view.Email, view.Role)
	if err != nil {
		return "", oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "Issue").
			Wrap(err)
	}

	s.logger.Info("login succeeded", "email", email)
	return token, nil
}

// GetByID fetches an account by ID. Returns ErrNotFound if absent.
func (s *Service) GetByID(ctx context.Context, id int64) (*Account, error) {
	acct, err := s.gateway.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "GetByID").
			With("account_id", id).
			Wrap(err)
	}
	return acct, nil
}

// GetByEmail fetches an account by email. Returns ErrNotFound if absent.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Account, error) {
	acct, err := s.gateway.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "GetByEmail").
			Wrap(err)
	}
	return acct, nil
}

// ListAll fetches every account. The transport edge restricts this to
// privileged callers.
func (s *Service) ListAll(ctx context.Context) ([]*Account, error) {
	accts, err := s.gateway.ListAll(ctx)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "ListAll").
			Wrap(err)
	}
	return accts, nil
}

// Update applies a partial profile update. A secret change requires the old
// secret and is verified against the auth view before anything is written;
// a failed verification produces zero store writes. The store receives one
// complete merged payload.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Account, error) {
	existing, err := s.gateway.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "GetByID").
			With("account_id", id).
			Wrap(err)
	}

	var newHash string
	if in.NewSecret != nil && strings.TrimSpace(*in.NewSecret) != "" {
		if in.OldSecret == nil || strings.TrimSpace(*in.OldSecret) == "" {
			return nil, fmt.Errorf("%w: old password is required to change the password", ErrInvalidOperation)
		}

		view, err := s.gateway.GetAuthView(ctx, existing.Email)
		if err != nil {
			return nil, oops.Code("ACCOUNT_UPDATE_FAILED").
				With("operation", "GetAuthView").
				With("account_id", id).
				Wrap(err)
		}

		ok, err := s.hasher.Verify(*in.OldSecret, view.CredentialHash)
		if err != nil {
			return nil, oops.Code("ACCOUNT_UPDATE_FAILED").
				With("operation", "Verify").
				With("account_id", id).
				Wrap(err)
		}
		if !ok {
			s.logger.Info("password change rejected: old password mismatch", "account_id", id)
			return nil, ErrInvalidCredentials
		}

		newHash, err = s.hasher.Hash(*in.NewSecret)
		if err != nil {
			return nil, oops.Code("ACCOUNT_UPDATE_FAILED").
				With("operation", "Hash").
				With("account_id", id).
				Wrap(err)
		}
	}

	updated, err := s.gateway.Update(ctx, id, mergeUpdate(existing, in, newHash))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "Update").
			With("account_id", id).
			Wrap(err)
	}

	s.logger.Info("account updated", "account_id", id, "password_changed", newHash != "")
	return updated, nil
}

// Delete removes an account. Returns ErrNotFound if absent.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return oops.Code("ACCOUNT_DELETE_FAILED").
			With("operation", "Delete").
			With("account_id", id).
			Wrap(err)
	}
	s.logger.Info("account deleted", "account_id", id)
	return nil
}

// ForgotPassword starts the reset flow. An unknown email terminates
// silently with success so callers cannot probe for registered addresses;
// every known-email call mints a fresh token.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	acct, err := s.gateway.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("password reset requested for unknown email", "email", email)
			return nil
		}
		return oops.Code("ACCOUNT_RESET_REQUEST_FAILED").
			With("operation", "GetByEmail").
			Wrap(err)
	}

	token, err := s.gateway.IssueResetToken(ctx, acct.ID)
	if err != nil {
		return oops.Code("ACCOUNT_RESET_REQUEST_FAILED").
			With("operation", "IssueResetToken").
			With("account_id", acct.ID).
			Wrap(err)
	}

	if err := s.notifier.SendResetLink(ctx, email, token); err != nil {
		return oops.Code("ACCOUNT_RESET_NOTIFY_FAILED").
			With("operation", "SendResetLink").
			Wrap(err)
	}

	s.logger.Info("password reset link sent", "account_id", acct.ID)
	return nil
}

// ResetPassword consumes a reset token and replaces the credential hash.
// The store's validation verdict is authoritative. The hash write happens
// before the token is marked used, so a crash in between leaves a
// usable-but-stale token rather than a consumed token with no effect; a
// mark-used failure after a successful hash write is logged, not returned.
func (s *Service) ResetPassword(ctx context.Context, token, newSecret string) error {
	validation, err := s.gateway.ValidateResetToken(ctx, token)
	if err != nil {
		return oops.Code("ACCOUNT_RESET_FAILED").
			With("operation", "ValidateResetToken").
			Wrap(err)
	}
	if !validation.Valid {
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.hasher.Hash(newSecret)
	if err != nil {
		return oops.Code("ACCOUNT_RESET_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	if err := s.gateway.SetCredentialHash(ctx, validation.AccountID, hash); err != nil {
		return oops.Code("ACCOUNT_RESET_FAILED").
			With("operation", "SetCredentialHash").
			With("account_id", validation.AccountID).
			Wrap(err)
	}

	if err := s.gateway.MarkTokenUsed(ctx, token); err != nil {
		// The password change already took effect; the token will die by
		// expiry. MarkTokenUsed is idempotent, so a retry elsewhere is safe.
		errutil.LogError(s.logger, "marking reset token used failed after password change", err)
	}

	s.logger.Info("password reset completed", "account_id", validation.AccountID)
	return nil
}
