// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

// Package store implements the account.Gateway contract as a typed
// HTTP/JSON client for the remote record store. It carries no logic beyond
// request plumbing and response-to-domain mapping: 404 becomes
// account.ErrNotFound, 409 becomes account.ErrAlreadyExists, and transport
// or 5xx failures carry account.ErrUpstreamUnavailable in their chain.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/oops"

	"github.com/smartdish/accounts/internal/account"
)

const accountsPath = "/api/store/accounts"

// Client talks to the record store over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

var _ account.Gateway = (*Client)(nil)

// NewClient creates a store client. timeout bounds every outbound request;
// a request that exceeds it surfaces as a retryable upstream error.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, oops.Errorf("store base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, oops.With("base_url", baseURL).Wrap(err)
	}
	if timeout <= 0 {
		return nil, oops.Errorf("store timeout must be positive, got %s", timeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Exists reports whether an account with the email is registered.
func (c *Client) Exists(ctx context.Context, email string) (bool, error) {
	_, err := c.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create stores a new account.
func (c *Client) Create(ctx context.Context, in account.NewAccount) (*account.Account, error) {
	var out accountDTO
	err := c.do(ctx, "create", http.MethodPost, accountsPath, newAccountDTO{
		Email:          in.Email,
		CredentialHash: in.CredentialHash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		DietIDs:        in.DietIDs,
		AllergenIDs:    in.AllergenIDs,
		CuisineIDs:     in.CuisineIDs,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// GetByID retrieves an account by ID.
func (c *Client) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	var out accountDTO
	if err := c.do(ctx, "get_by_id", http.MethodGet, fmt.Sprintf("%s/%d", accountsPath, id), nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// GetByEmail retrieves an account by email.
func (c *Client) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var out accountDTO
	path := accountsPath + "/email/" + url.PathEscape(email)
	if err := c.do(ctx, "get_by_email", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// GetAuthView retrieves the hash-bearing auth projection by email.
func (c *Client) GetAuthView(ctx context.Context, email string) (*account.AuthView, error) {
	var out authViewDTO
	path := accountsPath + "/auth/" + url.PathEscape(email)
	if err := c.do(ctx, "get_auth_view", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &account.AuthView{
		ID:             out.ID,
		Email:          out.Email,
		CredentialHash: out.CredentialHash,
		Active:         out.Active,
		Role:           account.Role(out.Role),
	}, nil
}

// ListAll retrieves every account.
func (c *Client) ListAll(ctx context.Context) ([]*account.Account, error) {
	var out []accountDTO
	if err := c.do(ctx, "list_all", http.MethodGet, accountsPath, nil, &out); err != nil {
		return nil, err
	}
	accts := make([]*account.Account, 0, len(out))
	for _, dto := range out {
		accts = append(accts, dto.toDomain())
	}
	return accts, nil
}

// Update replaces the account with the complete payload.
func (c *Client) Update(ctx context.Context, id int64, payload account.FullPayload) (*account.Account, error) {
	var out accountDTO
	err := c.do(ctx, "update", http.MethodPut, fmt.Sprintf("%s/%d", accountsPath, id), fullPayloadDTO{
		ID:             payload.ID,
		Email:          payload.Email,
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		CredentialHash: payload.CredentialHash,
		Role:           string(payload.Role),
		Active:         payload.Active,
		DietIDs:        emptyIfNil(payload.DietIDs),
		AllergenIDs:    emptyIfNil(payload.AllergenIDs),
		CuisineIDs:     emptyIfNil(payload.CuisineIDs),
		CreatedAt:      payload.CreatedAt,
		ModifiedAt:     payload.ModifiedAt,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// Delete removes an account.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, fmt.Sprintf("%s/%d", accountsPath, id), nil, nil)
}

// IssueResetToken asks the store to mint a reset token for the account.
func (c *Client) IssueResetToken(ctx context.Context, accountID int64) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	path := fmt.Sprintf("%s/%d/reset-tokens", accountsPath, accountID)
	if err := c.do(ctx, "issue_reset_token", http.MethodPost, path, nil, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// ValidateResetToken asks the store whether the token is usable.
func (c *Client) ValidateResetToken(ctx context.Context, token string) (*account.TokenValidation, error) {
	var out struct {
		Valid     bool  `json:"valid"`
		AccountID int64 `json:"accountId"`
	}
	path := "/api/store/reset-tokens/" + url.PathEscape(token)
	if err := c.do(ctx, "validate_reset_token", http.MethodGet, path, nil, &out); err != nil {
		// The store answers an unknown token with a not-found; that is
		// simply "not usable" to us, the message to the caller is the same.
		if errors.Is(err, account.ErrNotFound) {
			return &account.TokenValidation{Valid: false}, nil
		}
		return nil, err
	}
	return &account.TokenValidation{Valid: out.Valid, AccountID: out.AccountID}, nil
}

// SetCredentialHash atomically replaces the account's credential hash.
func (c *Client) SetCredentialHash(ctx context.Context, accountID int64, hash string) error {
	body := struct {
		CredentialHash string `json:"credentialHash"`
	}{CredentialHash: hash}
	path := fmt.Sprintf("%s/%d/credential", accountsPath, accountID)
	return c.do(ctx, "set_credential_hash", http.MethodPut, path, body, nil)
}

// MarkTokenUsed consumes a reset token. The store implements this as an
// idempotent conditional write, so repeating it is harmless.
func (c *Client) MarkTokenUsed(ctx context.Context, token string) error {
	path := "/api/store/reset-tokens/" + url.PathEscape(token) + "/consume"
	return c.do(ctx, "mark_token_used", http.MethodPost, path, nil, nil)
}

// do performs one JSON request/response exchange. in and out may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return oops.Code("STORE_ENCODE_FAILED").With("operation", op).Wrap(err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return oops.Code("STORE_REQUEST_FAILED").With("operation", op).Wrap(err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("store request failed", "operation", op, "error", err)
		return c.upstream(op, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(op, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return oops.Code("STORE_DECODE_FAILED").With("operation", op).Wrap(err)
		}
	}
	return nil
}

// statusError maps a non-2xx store response to a domain error.
func (c *Client) statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best-effort diagnostic read

	switch resp.StatusCode {
	case http.StatusNotFound:
		return account.ErrNotFound
	case http.StatusConflict:
		return account.ErrAlreadyExists
	}

	if resp.StatusCode >= 500 {
		c.logger.Warn("store returned server error",
			"operation", op, "status", resp.StatusCode, "body", string(snippet))
		return c.upstream(op, fmt.Errorf("store returned status %d", resp.StatusCode))
	}

	return oops.Code("STORE_REJECTED").
		With("operation", op).
		With("status", resp.StatusCode).
		Errorf("store rejected request: %s", string(snippet))
}

// upstream wraps a transient failure so callers can match
// account.ErrUpstreamUnavailable and treat it as retryable.
func (c *Client) upstream(op string, err error) error {
	return oops.Code("STORE_UNAVAILABLE").
		With("operation", op).
		Wrap(fmt.Errorf("%w: %v", account.ErrUpstreamUnavailable, err))
}

func emptyIfNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// accountDTO is the store's wire shape for an account record.
type accountDTO struct {
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

func (d accountDTO) toDomain() *account.Account {
	return &account.Account{
		ID:          d.ID,
		Email:       d.Email,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Role:        account.Role(d.Role),
		Active:      d.Active,
		DietIDs:     d.DietIDs,
		AllergenIDs: d.AllergenIDs,
		CuisineIDs:  d.CuisineIDs,
		CreatedAt:   d.CreatedAt,
		ModifiedAt:  d.ModifiedAt,
	}
}

type newAccountDTO struct {
	Email          string  `json:"email"`
	CredentialHash string  `json:"credentialHash"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	DietIDs        []int64 `json:"dietIds"`
	AllergenIDs    []int64 `json:"allergenIds"`
	CuisineIDs     []int64 `json:"cuisineIds"`
}

type authViewDTO struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	CredentialHash string `json:"credentialHash"`
	Active         bool   `json:"active"`
	Role           string `json:"role"`
}

// fullPayloadDTO is the complete record the store requires for an update.
// CredentialHash is omitted when empty, which the store reads as "keep".
type fullPayloadDTO struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	CredentialHash string    `json:"credentialHash,omitempty"`
	Role           string    `json:"role"`
	Active         bool      `json:"active"`
	DietIDs        []int64   `json:"dietIds"`
	AllergenIDs    []int64   `json:"allergenIds"`
	CuisineIDs     []int64   `json:"cuisineIds"`
	CreatedAt      time.Time `json:"createdAt"`
	ModifiedAt     time.Time `json:"modifiedAt"`
}
