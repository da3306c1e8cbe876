// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package account

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// argon2id parameters, per OWASP guidance.
const (
	hashTime    = 1
	hashMemory  = 64 * 1024 // KiB
	hashThreads = 4
	hashSaltLen = 16
	hashKeyLen  = 32
)

// ErrEmptySecret is returned when asked to hash an empty password.
var ErrEmptySecret = oops.Code("ACCOUNT_EMPTY_SECRET").Errorf("password cannot be empty")

// PasswordHasher produces and checks one-way credential hashes.
type PasswordHasher interface {
	// Hash produces a PHC-encoded argon2id hash of the secret.
	Hash(secret string) (string, error)

	// Verify reports whether secret matches the stored hash. The
	// comparison is constant-time with respect to the secret's content.
	// Returns (false, err) only for malformed hashes.
	Verify(secret, hash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher with argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher returns a hasher with the package parameters.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces a PHC-encoded argon2id hash of the secret.
func (h *Argon2idHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("ACCOUNT_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(secret), salt, hashTime, hashMemory, hashThreads, hashKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory, hashTime, hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether secret matches the PHC-encoded hash.
func (h *Argon2idHasher) Verify(secret, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(secret), salt, params.time, params.memory, params.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

type hashParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodeHash parses a $argon2id$v=..$m=..,t=..,p=..$salt$key string.
func decodeHash(encoded string) (hashParams, []byte, []byte, error) {
	var p hashParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, oops.Code("ACCOUNT_MALFORMED_HASH").Errorf("credential hash has %d segments, want 6", len(parts))
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, oops.Code("ACCOUNT_MALFORMED_HASH").Errorf("unsupported hash algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, oops.Code("ACCOUNT_MALFORMED_HASH").Wrap(err)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return p, nil, nil, oops.Code("ACCOUNT_MALFORMED_HASH").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return p, nil, nil, oops.Code("ACCOUNT_MALFORMED_HASH").Errorf("parallelism %d out of range", threads)
	}
	p.threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, oops.Code("ACCOUNT_MALFORMED_HASH").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, oops.Code("ACCOUNT_MALFORMED_HASH").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1<<10 {
		return p, nil, nil, oops.Code("ACCOUNT_MALFORMED_HASH").Errorf("hash key length %d out of range", len(key))
	}

	return p, salt, key, nil
}
