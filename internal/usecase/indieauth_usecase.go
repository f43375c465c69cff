package usecase

import (
	"context"

	"plume/internal/domain/entity"
)

// AuthorizationRequest carries the query parameters of an IndieAuth
// authorization request.
type AuthorizationRequest struct {
	ClientID            string `validate:"required,url"`
	RedirectURI         string `validate:"required,url"`
	State               string `validate:"required"`
	CodeChallenge       string `validate:"required"`
	CodeChallengeMethod string `validate:"required,oneof=S256 plain"`
	Scope               string
	Me                  string
}

// AuthorizationDetails is what the consent step needs to show: the resolved
// client metadata and the requested scopes.
type AuthorizationDetails struct {
	ClientID    string   `json:"client_id"`
	ClientName  string   `json:"client_name,omitempty"`
	RedirectURI string   `json:"redirect_uri"`
	Scopes      []string `json:"scopes"`
	Me          string   `json:"me"`
}

// ExchangeRequest carries the parameters of a code redemption.
type ExchangeRequest struct {
	GrantType    string `validate:"required,eq=authorization_code"`
	Code         string `validate:"required"`
	ClientID     string `validate:"required,url"`
	RedirectURI  string `validate:"required,url"`
	CodeVerifier string `validate:"required"`
}

// RefreshRequest carries the parameters of a refresh grant. Scope, when
// present, may only narrow the previous grant.
type RefreshRequest struct {
	GrantType    string `validate:"required,eq=refresh_token"`
	RefreshToken string `validate:"required"`
	ClientID     string `validate:"required,url"`
	Scope        string
}

// TokenResponse is the OAuth2 token endpoint payload.
type TokenResponse struct {
	Me           string `json:"me"`
	AccessToken  string `json:"access_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// IntrospectionResult is the RFC 7662 style introspection payload.
type IntrospectionResult struct {
	Active    bool   `json:"active"`
	Me        string `json:"me,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Scope     string `json:"scope,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// IndieAuthUsecase defines the interface for the authorization and token
// service.
type IndieAuthUsecase interface {
	// DescribeAuthorization validates an authorization request and resolves
	// the client metadata for the consent step. The redirect URI must be
	// same-origin with the client_id or declared by the client page.
	DescribeAuthorization(ctx context.Context, req AuthorizationRequest) (*AuthorizationDetails, error)

	// Approve records the owner's consent: it mints a single-use
	// authorization code bound to the request's PKCE challenge and returns
	// the redirect URL carrying code and state. The scope may have been
	// narrowed by the owner relative to the request.
	Approve(ctx context.Context, req AuthorizationRequest, grantedScope string) (string, error)

	// RedeemCodeForProfile consumes the code at the authorization endpoint:
	// identity verification only, no token is issued.
	RedeemCodeForProfile(ctx context.Context, req ExchangeRequest) (*TokenResponse, error)

	// ExchangeCode consumes the code at the token endpoint and issues an
	// access/refresh pair. Consumption is atomic: of concurrent redemptions
	// of one code, exactly one succeeds.
	ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenResponse, error)

	// Refresh redeems a refresh token for a fresh access token. Depending on
	// the configured rotation mode the refresh token is reissued or kept.
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)

	// Verify checks an access token on a protected request and returns its
	// grant when the token is active.
	Verify(ctx context.Context, accessToken string) (*entity.Token, error)

	// Introspect reports the state of an access token without failing on
	// inactive ones.
	Introspect(ctx context.Context, token string) (*IntrospectionResult, error)

	// Revoke invalidates an access token immediately. Unknown tokens revoke
	// to success, per RFC 7009.
	Revoke(ctx context.Context, token string) error
}
