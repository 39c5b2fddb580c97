// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// emailRegex is a deliberately loose shape check: one @ with something on
// both sides. Real validation is delivery, not parsing.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// User represents an account record.
//
// SessionID is non-nil only while a login session is active. ResetToken is
// non-nil only between issuance and consumption; it is always single-use.
type User struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	SessionID    *string
	ResetToken   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated User with a freshly assigned ID.
// The password must already be hashed; this constructor never sees
// plaintext credentials.
func NewUser(email, passwordHash string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateEmail validates the shape of an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("email", email).
			Errorf("email must contain a local part and a domain")
	}
	return nil
}

// UserRepository manages user persistence.
//
// Lookup misses are reported by wrapping ErrNotFound. Every mutator must
// apply its fields in a single atomic update; a caller must never observe
// a record with only part of a mutation applied.
type UserRepository interface {
	// Create stores a new user. Email uniqueness is enforced by the
	// store itself so concurrent inserts for the same email resolve to
	// exactly one winner; the losers get ErrAlreadyExists.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetBySessionID retrieves the user owning an active session.
	GetBySessionID(ctx context.Context, sessionID string) (*User, error)

	// GetByResetToken retrieves the user holding an unconsumed reset token.
	GetByResetToken(ctx context.Context, token string) (*User, error)

	// SetSessionID overwrites the session id; nil clears it.
	SetSessionID(ctx context.Context, id ulid.ULID, sessionID *string) error

	// SetResetToken overwrites the reset token, invalidating any prior
	// unconsumed one.
	SetResetToken(ctx context.Context, id ulid.ULID, token string) error

	// ResetPassword installs a new password hash and clears the reset
	// token in one atomic update.
	ResetPassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}
