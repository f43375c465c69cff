package service

// TokenSource mints the opaque credential strings handed to clients. Tokens
// carry no embedded claims; every check goes through the store so revocation
// is immediate.
type TokenSource interface {
	// NewAuthorizationCode returns a fresh single-use authorization code.
	NewAuthorizationCode() (string, error)

	// NewAccessToken returns a fresh access token string.
	NewAccessToken() (string, error)

	// NewRefreshToken returns a fresh refresh token string.
	NewRefreshToken() (string, error)
}

// CodeChallengeVerifier checks a PKCE code verifier against the challenge
// recorded at authorization time.
type CodeChallengeVerifier interface {
	// Verify reports whether the verifier satisfies the challenge under the
	// given method. Unknown methods never verify.
	Verify(method, challenge, verifier string) bool
}
