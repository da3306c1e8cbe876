// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package api

import (
	"time"

	"github.com/smartdish/accounts/internal/account"
)

type registerRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DietIDs     []int64 `json:"dietIds"`
	AllergenIDs []int64 `json:"allergenIds"`
	CuisineIDs  []int64 `json:"cuisineIds"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// updateRequest mirrors the partial-update semantics: absent fields stay
// unchanged, an empty array clears the set.
type updateRequest struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	OldPassword *string `json:"oldPassword"`
	NewPassword *string `json:"newPassword"`
	DietIDs     []int64 `json:"dietIds"`
	AllergenIDs []int64 `json:"allergenIds"`
	CuisineIDs  []int64 `json:"cuisineIds"`
}

func (r updateRequest) toInput() account.UpdateInput {
	return account.UpdateInput{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		OldSecret:   r.OldPassword,
		NewSecret:   r.NewPassword,
		DietIDs:     r.DietIDs,
		AllergenIDs: r.AllergenIDs,
		CuisineIDs:  r.CuisineIDs,
	}
}

// accountResponse is the outward account shape. It deliberately has no
// credential field of any kind.
type accountResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	DietIDs     []int64   `json:"dietIds"`
	AllergenIDs []int64   `json:"allergenIds"`
	CuisineIDs  []int64   `json:"cuisineIds"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}

// preferencesPayload carries the three preference sets on their own. On
// update, an absent array leaves the set unchanged and an empty array
// clears it, matching the account update semantics.
type preferencesPayload struct {
	DietIDs     []int64 `json:"dietIds"`
	AllergenIDs []int64 `json:"allergenIds"`
	CuisineIDs  []int64 `json:"cuisineIds"`
}

// exportResponse is the data-portability download: everything the service
// holds about the caller.
type exportResponse struct {
	ExportedAt time.Time       `json:"exportedAt"`
	Account    accountResponse `json:"account"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func toAccountResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Role:        string(a.Role),
		Active:      a.Active,
		DietIDs:     emptyIfNil(a.DietIDs),
		AllergenIDs: emptyIfNil(a.AllergenIDs),
		CuisineIDs:  emptyIfNil(a.CuisineIDs),
		CreatedAt:   a.CreatedAt,
		ModifiedAt:  a.ModifiedAt,
	}
}

func toPreferencesResponse(a *account.Account) preferencesPayload {
	return preferencesPayload{
		DietIDs:     emptyIfNil(a.DietIDs),
		AllergenIDs: emptyIfNil(a.AllergenIDs),
		CuisineIDs:  emptyIfNil(a.CuisineIDs),
	}
}

func toAccountResponses(accts []*account.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accts))
	for _, a := range accts {
		out = append(out, toAccountResponse(a))
	}
	return out
}

// emptyIfNil keeps preference sets serializing as [] rather than null.
func emptyIfNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
