// Package models holds the persisted value types.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is one local account together with its security counters.
//
// SessionRenewedAt is nil until the first successful authentication and
// again after logout. BlockedAt stays set after a block expires; it is
// cleared by the next successful authentication.
type User struct {
	ID               uuid.UUID  `json:"id"`
	PasswordDigest   string     `json:"password_digest"`
	SessionRenewedAt *time.Time `json:"session_renewed_at,omitempty"`
	FailedAttempts   int        `json:"failed_attempts"`
	BlockedAt        *time.Time `json:"blocked_at,omitempty"`
}

// NewUser returns a user with no session, no failures and no block.
func NewUser(id uuid.UUID, digest string) *User {
	return &User{ID: id, PasswordDigest: digest}
}

// UpdatePassword replaces the digest. Session and lockout state are kept.
func (u *User) UpdatePassword(digest string) {
	u.PasswordDigest = digest
}

func (u *User) RenewSession(at time.Time) {
	u.SessionRenewedAt = &at
}

func (u *User) EndSession() {
	u.SessionRenewedAt = nil
}

func (u *User) BlockAccess(at time.Time) {
	u.BlockedAt = &at
}

// ResetFailedAttempts starts a fresh lockout cycle.
func (u *User) ResetFailedAttempts() {
	u.FailedAttempts = 0
	u.BlockedAt = nil
}

// Clone returns a deep copy, so stores never share the optional instants
// with their callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.SessionRenewedAt != nil {
		t := *u.SessionRenewedAt
		c.SessionRenewedAt = &t
	}
	if u.BlockedAt != nil {
		t := *u.BlockedAt
		c.BlockedAt = &t
	}
	return &c
}
