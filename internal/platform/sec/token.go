// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Package sec provides cryptographic primitives for the authentication layer.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, session
// token generation) from the domain logic. Session tokens are opaque random
// values; only their SHA-256 digest is ever stored server-side, so a leaked
// session store cannot be replayed against the API.
package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random token of byteLength entropy bytes.
func GenerateSecureToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a token.
//
// Digests are used as storage keys so that raw tokens never touch Redis.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
