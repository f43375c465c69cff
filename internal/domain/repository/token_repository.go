package repository

import (
	"context"
	"time"

	"plume/internal/domain/entity"
	"plume/internal/errors"
)

// Domain-specific errors for token persistence.
var (
	// ErrCodeNotFound is returned when an authorization code is unknown.
	ErrCodeNotFound = errors.New("authorization code not found")
	// ErrCodeConsumed is returned when the used-flag check-and-set loses:
	// the code was already redeemed, expired, or never existed.
	ErrCodeConsumed = errors.New("authorization code already used or expired")
	// ErrTokenNotFound is returned when a token row is unknown.
	ErrTokenNotFound = errors.New("token not found")
)

// TokenRepository defines the interface for authorization code and token
// database operations.
type TokenRepository interface {
	// CreateAuthorizationCode persists a fresh, unused code.
	CreateAuthorizationCode(ctx context.Context, code *entity.AuthorizationCode) error

	// ConsumeAuthorizationCode atomically marks the code used. It succeeds
	// at most once per code: the update is a single statement guarded on
	// used = false and expires_at > now, so exactly one of any number of
	// concurrent redemptions observes success. Returns ErrCodeConsumed when
	// the guard does not match.
	ConsumeAuthorizationCode(ctx context.Context, code string, now time.Time) (*entity.AuthorizationCode, error)

	// CreateToken persists a new access/refresh pair.
	CreateToken(ctx context.Context, token *entity.Token) error

	// FindTokenByAccess retrieves a token row by its access token string.
	FindTokenByAccess(ctx context.Context, accessToken string) (*entity.Token, error)

	// FindTokenByRefresh retrieves a token row by its refresh token string.
	FindTokenByRefresh(ctx context.Context, clientID, refreshToken string) (*entity.Token, error)

	// UpdateToken replaces the token strings, scope and expiry in place.
	// The row identity follows the previous access token.
	UpdateToken(ctx context.Context, previousAccess string, token *entity.Token) error

	// RevokeToken expires an access token immediately. Unknown tokens are
	// not an error; revocation is idempotent.
	RevokeToken(ctx context.Context, accessToken string, at time.Time) error
}
