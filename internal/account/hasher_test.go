// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package account_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdish/accounts/internal/account"
	"github.com/smartdish/accounts/pkg/errutil"
)

func TestArgon2idHasher_RoundTrip(t *testing.T) {
	h := account.NewArgon2idHasher()

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v="))

	ok, err := h.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2idHasher_SaltsDiffer(t *testing.T) {
	h := account.NewArgon2idHasher()

	first, err := h.Hash("same secret")
	require.NoError(t, err)
	second, err := h.Hash("same secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestArgon2idHasher_EmptySecret(t *testing.T) {
	h := account.NewArgon2idHasher()

	_, err := h.Hash("")
	require.ErrorIs(t, err, account.ErrEmptySecret)
}

func TestArgon2idHasher_MalformedHash(t *testing.T) {
	h := account.NewArgon2idHasher()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not phc", "plainly-not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$a2V5"},
		{"bad version segment", "$argon2id$vee$m=65536,t=1,p=4$c2FsdA$a2V5"},
		{"bad params segment", "$argon2id$v=19$nope$c2FsdA$a2V5"},
		{"zero parallelism", "$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$a2V5"},
		{"bad salt base64", "$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5"},
		{"bad key base64", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("whatever", tt.hash)
			require.Error(t, err)
			assert.False(t, ok)
			errutil.AssertErrorCode(t, err, "ACCOUNT_MALFORMED_HASH")
		})
	}
}

// The anti-enumeration dummy value must itself be a decodable hash, or the
// unknown-email login path would error instead of burning a verification.
func TestArgon2idHasher_VerifiesAgainstForeignParams(t *testing.T) {
	h := account.NewArgon2idHasher()

	// Same shape as the burn value used on unknown-email logins.
	dummy := "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

	ok, err := h.Verify("anything", dummy)
	require.NoError(t, err)
	assert.False(t, ok)
}
