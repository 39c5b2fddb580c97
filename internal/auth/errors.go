// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import "errors"

// Sentinel errors returned by repositories and translated by Service into
// operation-appropriate outcomes.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an insert collides with an
	// existing unique key (registration with a taken email).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidToken is returned when a reset token is unknown or has
	// already been consumed.
	ErrInvalidToken = errors.New("invalid token")
)
