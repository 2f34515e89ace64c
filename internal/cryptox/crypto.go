// Package cryptox turns plaintext secrets into stored digests and checks
// candidates against them. Plaintext never leaves a Hasher.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/accesskeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher is a one-way digest of a plaintext secret.
type Hasher interface {
	// Digest returns the storable digest of secret.
	Digest(secret string) (string, error)
	// Matches reports whether secret hashes to digest.
	Matches(digest, secret string) (bool, error)
}

const (
	HasherSHA256 = "sha256"
	HasherArgon2 = "argon2"
	HasherBcrypt = "bcrypt"
)

// NewHasher picks a Hasher by name. salt is only used by argon2.
func NewHasher(name string, salt string) (Hasher, error) {
	switch name {
	case "", HasherSHA256:
		return SHA256Hasher{}, nil
	case HasherArgon2:
		if salt == "" {
			return nil, errors.New("argon2 hasher requires a salt")
		}
		return NewArgon2Hasher([]byte(salt)), nil
	case HasherBcrypt:
		return NewBcryptHasher(bcrypt.DefaultCost), nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", name)
	}
}

func secretBytes(secret string) ([]byte, error) {
	if !utf8.ValidString(secret) {
		return nil, fmt.Errorf("%w: secret is not valid UTF-8", common.ErrSecretEncoding)
	}
	return []byte(secret), nil
}

func equalDigests(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// SHA256Hasher stores the hex SHA-256 of the secret.
type SHA256Hasher struct{}

func (SHA256Hasher) Digest(secret string) (string, error) {
	b, err := secretBytes(secret)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	common.WipeByteArray(b)
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Matches(digest, secret string) (bool, error) {
	candidate, err := h.Digest(secret)
	if err != nil {
		return false, err
	}
	return equalDigests(digest, candidate), nil
}

// Argon2Hasher derives an Argon2id key with an installation-wide salt, which
// keeps the digest deterministic for a given secret.
type Argon2Hasher struct {
	salt []byte
}

func NewArgon2Hasher(salt []byte) *Argon2Hasher {
	s := make([]byte, len(salt))
	copy(s, salt)
	return &Argon2Hasher{salt: s}
}

func (h *Argon2Hasher) Digest(secret string) (string, error) {
	b, err := secretBytes(secret)
	if err != nil {
		return "", err
	}
	key := argon2.IDKey(b, h.salt, 1, 64*1024, 4, 32)
	common.WipeByteArray(b)
	return hex.EncodeToString(key), nil
}

func (h *Argon2Hasher) Matches(digest, secret string) (bool, error) {
	candidate, err := h.Digest(secret)
	if err != nil {
		return false, err
	}
	return equalDigests(digest, candidate), nil
}

// BcryptHasher stores salted bcrypt hashes. Digests differ between calls,
// so comparison goes through bcrypt itself.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Digest(secret string) (string, error) {
	b, err := secretBytes(secret)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	hash, err := bcrypt.GenerateFromPassword(b, h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", common.ErrSecretEncoding, err)
		}
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Matches(digest, secret string) (bool, error) {
	b, err := secretBytes(secret)
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(b)
	err = bcrypt.CompareHashAndPassword([]byte(digest), b)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, fmt.Errorf("%w: %v", common.ErrSecretEncoding, err)
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}
