// Package auth provides concrete implementations for token and PKCE domain services.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"plume/internal/domain/service"
)

// PKCE challenge methods.
const (
	MethodS256  = "S256"
	MethodPlain = "plain"
)

// s256Verifier is a concrete implementation of the CodeChallengeVerifier
// interface supporting the S256 and plain methods of RFC 7636.
type s256Verifier struct{}

// NewCodeChallengeVerifier is the constructor for s256Verifier.
func NewCodeChallengeVerifier() service.CodeChallengeVerifier {
	return &s256Verifier{}
}

// Verify reports whether the verifier satisfies the challenge. S256 hashes
// the verifier and compares base64url (no padding) encodings; plain compares
// directly. Comparisons are constant time.
func (v *s256Verifier) Verify(method, challenge, verifier string) bool {
	if challenge == "" || verifier == "" {
		return false
	}

	switch method {
	case MethodS256:
		sum := sha256.Sum256([]byte(verifier))
		computed := base64.RawURLEncoding.EncodeToString(sum[:])

		return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
	case MethodPlain:
		return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
	default:
		return false
	}
}

// ComputeS256Challenge derives the S256 challenge for a verifier. Used by
// tests and by clients embedded in the same process.
func ComputeS256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))

	return base64.RawURLEncoding.EncodeToString(sum[:])
}
