// Package common defines sentinel errors shared by the access service, its
// stores and the terminal front-end. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Account errors.
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserDoesNotExist  = errors.New("user does not exist")

	// ErrSecretEncoding is returned when a plaintext secret cannot be turned
	// into hashable bytes.
	ErrSecretEncoding = errors.New("secret encoding failure")

	// Biometry errors. A cancelled challenge is never counted as a failed
	// attempt.
	ErrBiometryUnavailable      = errors.New("biometry unavailable")
	ErrBiometryCancelled        = errors.New("biometry cancelled")
	ErrBiometryChallengeFailure = errors.New("biometry challenge failure")

	// Configuration errors.
	ErrInvalidPolicy = errors.New("invalid access policy")
)
