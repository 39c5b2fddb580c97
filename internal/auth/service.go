// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// dummyPasswordHash is verified when a user doesn't exist so that
// authentication takes the same time for unknown and known emails.
// This is NOT a real credential - it will never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service is the session authentication authority.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenSource
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenSource) (*Service, error) {
	return NewServiceWithLogger(users, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, tokens TokenSource, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("token source is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("logger is required")
	}
	return &Service{users: users, hasher: hasher, tokens: tokens, logger: logger}, nil
}

// Register hashes the password and inserts a new user record.
// A taken email surfaces as ErrAlreadyExists, including the case where a
// concurrent register wins the insert race: uniqueness is enforced by the
// store, not by an application-level lock.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, oops.Code("AUTH_ALREADY_EXISTS").
				With("email", email).
				Wrap(ErrAlreadyExists)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "email", email)
	return user, nil
}

// Authenticate validates email/password credentials.
// Unknown email and wrong password both come back as (false, nil); a
// malformed stored hash degrades to false rather than escaping as an
// error. Verification runs even for unknown emails to keep response time
// independent of account existence.
func (s *Service) Authenticate(ctx context.Context, email, password string) (bool, error) {
	targetHash := dummyPasswordHash
	userExists := false

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return false, oops.Code("AUTH_LOOKUP_FAILED").
				With("operation", "get user by email").
				Wrap(err)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// A stored hash we cannot parse is a mismatch, not a failure.
		return false, nil
	}

	return userExists && valid, nil
}

// CreateSession generates a session token and installs it on the record,
// silently invalidating any previously active session for that user.
// Returns ErrNotFound when no record matches the email.
func (s *Service) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code("SESSION_USER_NOT_FOUND").
				With("email", email).
				Wrap(ErrNotFound)
		}
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	if err := s.users.SetSessionID(ctx, user.ID, &token); err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "store session id").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	s.logger.Info("session created", "user_id", user.ID.String())
	return token, nil
}

// ResolveSession returns the user owning an active session token, or
// ErrNotFound when no record carries that session id.
func (s *Service) ResolveSession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, oops.Code("SESSION_INVALID").Wrap(ErrNotFound)
	}

	user, err := s.users.GetBySessionID(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").Wrap(ErrNotFound)
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get user by session id").
			Wrap(err)
	}

	return user, nil
}

// DestroySession clears the user's session id. Destroying the session of
// an unknown user is a deliberate no-op, not an error: logout is
// idempotent.
func (s *Service) DestroySession(ctx context.Context, userID ulid.ULID) error {
	err := s.users.SetSessionID(ctx, userID, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return oops.Code("SESSION_DESTROY_FAILED").
			With("operation", "clear session id").
			With("user_id", userID.String()).
			Wrap(err)
	}

	s.logger.Info("session destroyed", "user_id", userID.String())
	return nil
}

// IssueResetToken generates a reset token for the user with the given
// email, overwriting any prior unconsumed token. Returns ErrNotFound when
// the email is unknown.
func (s *Service) IssueResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code("RESET_USER_NOT_FOUND").
				With("email", email).
				Wrap(ErrNotFound)
		}
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}

	if err := s.users.SetResetToken(ctx, user.ID, token); err != nil {
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "store reset token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	s.logger.Info("reset token issued", "user_id", user.ID.String())
	return token, nil
}

// ConsumeResetToken rehashes the new password and clears the reset token
// in a single atomic update. An unknown or already-consumed token fails
// with ErrInvalidToken - in particular, replaying a consumed token fails.
func (s *Service) ConsumeResetToken(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidToken)
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidToken)
		}
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "get user by reset token").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	if err := s.users.ResetPassword(ctx, user.ID, hash); err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "update password").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	s.logger.Info("password updated via reset token", "user_id", user.ID.String())
	return nil
}
