// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package authtest provides in-memory and deterministic test doubles for
// the auth package.
package authtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// MemoryUserRepository is an in-memory auth.UserRepository. It mirrors the
// postgres implementation's contract: case-insensitive unique emails,
// ErrNotFound on misses, atomic per-record mutations under one lock.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[ulid.ULID]*auth.User
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[ulid.ULID]*auth.User)}
}

// Create stores a new user, enforcing email uniqueness.
func (r *MemoryUserRepository) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return auth.ErrAlreadyExists
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

// GetByID retrieves a user by ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

// GetBySessionID retrieves the user owning an active session.
func (r *MemoryUserRepository) GetBySessionID(_ context.Context, sessionID string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.SessionID != nil && *u.SessionID == sessionID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

// GetByResetToken retrieves the user holding an unconsumed reset token.
func (r *MemoryUserRepository) GetByResetToken(_ context.Context, token string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

// SetSessionID overwrites the session id; nil clears it.
func (r *MemoryUserRepository) SetSessionID(_ context.Context, id ulid.ULID, sessionID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	if sessionID == nil {
		u.SessionID = nil
	} else {
		s := *sessionID
		u.SessionID = &s
	}
	return nil
}

// SetResetToken overwrites the reset token.
func (r *MemoryUserRepository) SetResetToken(_ context.Context, id ulid.ULID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.ResetToken = &token
	return nil
}

// ResetPassword installs the new hash and clears the reset token together.
func (r *MemoryUserRepository) ResetPassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	return nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*MemoryUserRepository)(nil)

// PlainHasher is a deterministic auth.PasswordHasher for tests. Hashes are
// "plain:<password>" so assertions can read them; Verify fails on inputs
// without the prefix the way the real hasher fails on malformed hashes.
type PlainHasher struct{}

// Hash returns a readable fake digest.
func (PlainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", auth.ErrEmptyPassword
	}
	return "plain:" + password, nil
}

// Verify compares against the fake digest.
func (PlainHasher) Verify(password, hash string) (bool, error) {
	rest, ok := strings.CutPrefix(hash, "plain:")
	if !ok {
		return false, fmt.Errorf("malformed test hash %q", hash)
	}
	return rest == password, nil
}

// Compile-time interface check.
var _ auth.PasswordHasher = PlainHasher{}

// SequenceTokenSource is a deterministic auth.TokenSource that yields
// "token-1", "token-2", ...
type SequenceTokenSource struct {
	mu sync.Mutex
	n  int
}

// Generate returns the next token in the sequence.
func (s *SequenceTokenSource) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("token-%d", s.n), nil
}

// Compile-time interface check.
var _ auth.TokenSource = (*SequenceTokenSource)(nil)
