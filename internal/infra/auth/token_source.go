package auth

import (
	"crypto/rand"
	"encoding/base64"

	"plume/internal/domain/service"
	"plume/internal/errors"
)

// Token prefixes make leaked credentials recognizable in logs and secret
// scanners without revealing anything about the bearer.
const (
	accessTokenPrefix  = "pa_"
	refreshTokenPrefix = "pr_"
)

const tokenEntropyBytes = 32

// opaqueTokenSource is a concrete implementation of the TokenSource
// interface. All credentials are random strings; their meaning lives
// entirely in the database.
type opaqueTokenSource struct{}

// NewTokenSource is the constructor for opaqueTokenSource.
func NewTokenSource() service.TokenSource {
	return &opaqueTokenSource{}
}

// NewAuthorizationCode returns a fresh single-use authorization code.
func (s *opaqueTokenSource) NewAuthorizationCode() (string, error) {
	return randomToken("")
}

// NewAccessToken returns a fresh access token string.
func (s *opaqueTokenSource) NewAccessToken() (string, error) {
	return randomToken(accessTokenPrefix)
}

// NewRefreshToken returns a fresh refresh token string.
func (s *opaqueTokenSource) NewRefreshToken() (string, error) {
	return randomToken(refreshTokenPrefix)
}

func randomToken(prefix string) (string, error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
