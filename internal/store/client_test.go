// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdish/accounts/internal/account"
	"github.com/smartdish/accounts/internal/store"
)

func newTestClient(t *testing.T, handler http.Handler) *store.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := store.NewClient(srv.URL, 2*time.Second, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := store.NewClient("", time.Second, nil)
	require.Error(t, err)

	_, err = store.NewClient("http://store.local", 0, nil)
	require.Error(t, err)
}

func TestClient_GetByID(t *testing.T) {
	t.Run("decodes account", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/store/accounts/42", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			//nolint:errcheck // test handler
			w.Write([]byte(`{
				"id": 42, "email": "a@b.com", "firstName": "Ada", "lastName": "Byron",
				"role": "USER", "active": true,
				"dietIds": [1], "allergenIds": [], "cuisineIds": [3, 4],
				"createdAt": "2026-01-02T03:04:05Z", "modifiedAt": "2026-01-02T03:04:05Z"
			}`))
		}))

		acct, err := c.GetByID(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), acct.ID)
		assert.Equal(t, "a@b.com", acct.Email)
		assert.Equal(t, account.RoleUser, acct.Role)
		assert.Equal(t, []int64{3, 4}, acct.CuisineIDs)
		assert.True(t, acct.Active)
	})

	t.Run("maps 404 to ErrNotFound", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := c.GetByID(context.Background(), 42)
		require.ErrorIs(t, err, account.ErrNotFound)
	})
}

func TestClient_Exists(t *testing.T) {
	t.Run("true when the store knows the email", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/store/accounts/email/a@b.com", r.URL.Path)
			//nolint:errcheck // test handler
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "email": "a@b.com"})
		}))

		exists, err := c.Exists(context.Background(), "a@b.com")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("false on not found", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		exists, err := c.Exists(context.Background(), "a@b.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("propagates upstream failures", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := c.Exists(context.Background(), "a@b.com")
		require.ErrorIs(t, err, account.ErrUpstreamUnavailable)
	})
}

func TestClient_Create(t *testing.T) {
	t.Run("posts hash-bearing payload", func(t *testing.T) {
		var received map[string]any
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusCreated)
			//nolint:errcheck // test handler
			w.Write([]byte(`{"id": 7, "email": "a@b.com", "role": "USER", "active": true}`))
		}))

		acct, err := c.Create(context.Background(), account.NewAccount{
			Email:          "a@b.com",
			CredentialHash: "$argon2id$hash",
			FirstName:      "Ada",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), acct.ID)
		assert.Equal(t, "$argon2id$hash", received["credentialHash"])
	})

	t.Run("maps 409 to ErrAlreadyExists", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))

		_, err := c.Create(context.Background(), account.NewAccount{Email: "a@b.com"})
		require.ErrorIs(t, err, account.ErrAlreadyExists)
	})
}

func TestClient_Update_SendsCompletePayload(t *testing.T) {
	var received map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/store/accounts/9", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		//nolint:errcheck // test handler
		w.Write([]byte(`{"id": 9, "email": "a@b.com"}`))
	}))

	_, err := c.Update(context.Background(), 9, account.FullPayload{
		ID:        9,
		Email:     "a@b.com",
		FirstName: "Ada",
		LastName:  "Byron",
		Role:      account.RoleUser,
		Active:    true,
	})
	require.NoError(t, err)

	// Mandatory fields are always present; the hash is omitted when unchanged.
	assert.Equal(t, "a@b.com", received["email"])
	assert.Equal(t, "USER", received["role"])
	assert.Equal(t, []any{}, received["dietIds"])
	assert.NotContains(t, received, "credentialHash")
}

func TestClient_ResetTokenFlow(t *testing.T) {
	t.Run("issue returns token value", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/store/accounts/42/reset-tokens", r.URL.Path)
			//nolint:errcheck // test handler
			w.Write([]byte(`{"token": "tok-123"}`))
		}))

		tok, err := c.IssueResetToken(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, "tok-123", tok)
	})

	t.Run("validate decodes verdict", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/store/reset-tokens/tok-123", r.URL.Path)
			//nolint:errcheck // test handler
			w.Write([]byte(`{"valid": true, "accountId": 42}`))
		}))

		v, err := c.ValidateResetToken(context.Background(), "tok-123")
		require.NoError(t, err)
		assert.True(t, v.Valid)
		assert.Equal(t, int64(42), v.AccountID)
	})

	t.Run("validate treats unknown token as not usable", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		v, err := c.ValidateResetToken(context.Background(), "gone")
		require.NoError(t, err)
		assert.False(t, v.Valid)
	})

	t.Run("mark used posts consume", func(t *testing.T) {
		var path string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}))

		require.NoError(t, c.MarkTokenUsed(context.Background(), "tok-123"))
		assert.Equal(t, "/api/store/reset-tokens/tok-123/consume", path)
	})
}

func TestClient_SetCredentialHash(t *testing.T) {
	var received map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/store/accounts/42/credential", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.SetCredentialHash(context.Background(), 42, "$argon2id$new"))
	assert.Equal(t, "$argon2id$new", received["credentialHash"])
}

func TestClient_Timeout_IsUpstreamUnavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))

	// Shorter deadline than the handler's sleep.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetByID(ctx, 1)
	require.ErrorIs(t, err, account.ErrUpstreamUnavailable)
}

func TestClient_ListAll(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/store/accounts", r.URL.Path)
		//nolint:errcheck // test handler
		w.Write([]byte(`[{"id": 1, "email": "a@b.com"}, {"id": 2, "email": "c@d.com"}]`))
	}))

	accts, err := c.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, accts, 2)
	assert.Equal(t, "c@d.com", accts[1].Email)
}
