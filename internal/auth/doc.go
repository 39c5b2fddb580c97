// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package auth is the session authentication authority.
//
// # Domain Types
//
// User is the single persisted record. A login session is not a distinct
// entity: it is encoded entirely as the SessionID field of a user record,
// created on login and nulled on logout. A reset token lives on the same
// record between issuance and its single consumption.
//
// # Capabilities
//
// PasswordHasher and TokenSource are small capability interfaces so tests
// can substitute deterministic fakes (see authtest). Argon2idHasher and
// CryptoTokenSource are the production implementations.
//
// # Service
//
// Service orchestrates registration, credential checks, session lifecycle
// and reset-token lifecycle against a UserRepository. It owns no state of
// its own and is safe for concurrent use; per-record atomicity is
// delegated to the repository.
package auth
