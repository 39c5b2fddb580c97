// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/samber/oops"
)

// TokenBytes is the raw entropy per token: 32 bytes = 64 hex chars,
// 256 bits, far beyond any collision concern.
const TokenBytes = 32

// TokenSource produces opaque high-entropy tokens. The same source serves
// session ids and reset tokens; callers separate the namespaces by the
// field they store the token in.
type TokenSource interface {
	Generate() (string, error)
}

// CryptoTokenSource implements TokenSource using crypto/rand.
type CryptoTokenSource struct{}

// NewCryptoTokenSource creates a new CryptoTokenSource.
func NewCryptoTokenSource() *CryptoTokenSource {
	return &CryptoTokenSource{}
}

// Generate returns a hex-encoded random token.
func (s *CryptoTokenSource) Generate() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// Compile-time interface check.
var _ TokenSource = (*CryptoTokenSource)(nil)
