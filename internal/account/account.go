// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

// Package account implements the account-management front door: credential
// verification, session issuance, profile updates, and the password-reset
// lifecycle. Durable state lives in the remote record store; this package
// only holds transient per-request copies.
package account

import (
	"time"
)

// Role is the access level stored on an account.
type Role string

// Known roles.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account is a user identity record as returned by the store. It never
// carries the credential hash; authentication uses AuthView instead.
type Account struct {
	ID          int64
	Email       string
	FirstName   string
	LastName    string
	Role        Role
	Active      bool
	DietIDs     []int64
	AllergenIDs []int64
	CuisineIDs  []int64
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// AuthView is the hash-bearing projection of an account served by the
// store's dedicated auth endpoint. It exists only for credential checks
// and must never leak outward.
type AuthView struct {
	ID             int64
	Email          string
	CredentialHash string
	Active         bool
	Role           Role
}

// RegisterInput carries the fields needed to create an account. Secret is
// the plaintext password; it is hashed here before it ever crosses the
// store boundary.
type RegisterInput struct {
	Email       string
	Secret      string
	FirstName   string
	LastName    string
	DietIDs     []int64
	AllergenIDs []int64
	CuisineIDs  []int64
}

// NewAccount is the creation payload sent to the store. The store assigns
// the ID, timestamps, the USER role, and the active flag.
type NewAccount struct {
	Email          string
	CredentialHash string
	FirstName      string
	LastName       string
	DietIDs        []int64
	AllergenIDs    []int64
	CuisineIDs     []int64
}

// UpdateInput is a partial profile update. Nil pointer fields and nil
// slices mean "unchanged"; a non-nil empty slice clears the set.
type UpdateInput struct {
	Email       *string
	FirstName   *string
	LastName    *string
	OldSecret   *string
	NewSecret   *string
	DietIDs     []int64
	AllergenIDs []int64
	CuisineIDs  []int64
}

// FullPayload is the complete record the store requires for an update; the
// store rejects partial payloads. CredentialHash is the one optional field:
// empty means the stored hash is kept as is.
type FullPayload struct {
	ID             int64
	Email          string
	FirstName      string
	LastName       string
	CredentialHash string
	Role           Role
	Active         bool
	DietIDs        []int64
	AllergenIDs    []int64
	CuisineIDs     []int64
	CreatedAt      time.Time
	ModifiedAt     time.Time
}

// TokenValidation is the store's verdict on a reset token. The store
// computes it against its own clock and used flag; it is authoritative and
// never re-derived locally.
type TokenValidation struct {
	Valid     bool
	AccountID int64
}

// mergeUpdate composes the full update payload from the stored account and
// the caller's partial input. Every mandatory field ends up as either the
// caller value or the prior stored value. newHash is empty unless a secret
// change was verified upstream.
func mergeUpdate(existing *Account, in UpdateInput, newHash string) FullPayload {
	p := FullPayload{
		ID:             existing.ID,
		Email:          existing.Email,
		FirstName:      existing.FirstName,
		LastName:       existing.LastName,
		CredentialHash: newHash,
		Role:           existing.Role,
		Active:         existing.Active,
		DietIDs:        existing.DietIDs,
		AllergenIDs:    existing.AllergenIDs,
		CuisineIDs:     existing.CuisineIDs,
		CreatedAt:      existing.CreatedAt,
		ModifiedAt:     existing.ModifiedAt,
	}

	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}

	// A caller-supplied set, even empty, replaces the stored set wholesale.
	if in.DietIDs != nil {
		p.DietIDs = in.DietIDs
	}
	if in.AllergenIDs != nil {
		p.AllergenIDs = in.AllergenIDs
	}
	if in.CuisineIDs != nil {
		p.CuisineIDs = in.CuisineIDs
	}

	return p
}
