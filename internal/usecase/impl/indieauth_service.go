package impl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"plume/config"
	deliverycontext "plume/internal/delivery/context"
	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/domain/service"
	"plume/internal/usecase"

	"github.com/pkg/errors"
)

// indieAuthService implements the IndieAuthUsecase interface.
type indieAuthService struct {
	txManager repository.TransactionManager
	resolver  service.ClientResolver
	tokens    service.TokenSource
	pkce      service.CodeChallengeVerifier
	cfg       *config.Config
	logger    *slog.Logger
}

// NewIndieAuthService is the constructor for indieAuthService.
func NewIndieAuthService(
	txManager repository.TransactionManager,
	resolver service.ClientResolver,
	tokens service.TokenSource,
	pkce service.CodeChallengeVerifier,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.IndieAuthUsecase {
	return &indieAuthService{
		txManager: txManager,
		resolver:  resolver,
		tokens:    tokens,
		pkce:      pkce,
		cfg:       cfg,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *indieAuthService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// DescribeAuthorization validates an authorization request and resolves the
// client metadata for the consent step.
func (srv *indieAuthService) DescribeAuthorization(ctx context.Context, req usecase.AuthorizationRequest) (*usecase.AuthorizationDetails, error) {
	meta, err := srv.resolver.Resolve(ctx, req.ClientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve client")
	}

	if !redirectAllowed(req.ClientID, req.RedirectURI, meta.RedirectURIs) {
		return nil, domainerrors.ErrInvalidClient.WrapMessage("redirect_uri not registered by client")
	}

	return &usecase.AuthorizationDetails{
		ClientID:    req.ClientID,
		ClientName:  meta.Name,
		RedirectURI: req.RedirectURI,
		Scopes:      splitScopes(req.Scope),
		Me:          srv.cfg.Site.BaseURL + "/",
	}, nil
}

// Approve records the owner's consent and mints the single-use code bound to
// the request's PKCE challenge.
func (srv *indieAuthService) Approve(ctx context.Context, req usecase.AuthorizationRequest, grantedScope string) (string, error) {
	meta, err := srv.resolver.Resolve(ctx, req.ClientID)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve client")
	}
	if !redirectAllowed(req.ClientID, req.RedirectURI, meta.RedirectURIs) {
		return "", domainerrors.ErrInvalidClient.WrapMessage("redirect_uri not registered by client")
	}

	// Consent may narrow the requested scope, never widen it.
	if grantedScope == "" {
		grantedScope = req.Scope
	} else if !entity.ScopeSubset(grantedScope, req.Scope) {
		return "", domainerrors.ErrInvalidScope.WrapMessage("granted scope exceeds requested scope")
	}

	codeValue, err := srv.tokens.NewAuthorizationCode()
	if err != nil {
		return "", errors.Wrap(err, "failed to mint authorization code")
	}

	now := time.Now().UTC()
	code := &entity.AuthorizationCode{
		Code:                codeValue,
		ClientID:            req.ClientID,
		RedirectURI:         req.RedirectURI,
		Scope:               grantedScope,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		ExpiresAt:           now.Add(srv.cfg.IndieAuth.CodeTTL),
		CreatedAt:           now,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewTokenRepository().CreateAuthorizationCode(ctx, code)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to store authorization code", slog.Any("error", err))

		return "", errors.Wrap(err, "failed to store authorization code")
	}

	redirect, err := url.Parse(req.RedirectURI)
	if err != nil {
		return "", domainerrors.ErrInvalidRequest.WrapMessage("invalid redirect_uri")
	}
	query := redirect.Query()
	query.Set("code", codeValue)
	query.Set("state", req.State)
	query.Set("iss", srv.cfg.Site.BaseURL+"/")
	redirect.RawQuery = query.Encode()

	srv.log(ctx).Info("Authorization approved",
		slog.String("clientId", req.ClientID),
		slog.String("scope", grantedScope),
	)

	return redirect.String(), nil
}

// RedeemCodeForProfile consumes the code for identity verification only.
func (srv *indieAuthService) RedeemCodeForProfile(ctx context.Context, req usecase.ExchangeRequest) (*usecase.TokenResponse, error) {
	if _, err := srv.consumeCode(ctx, req); err != nil {
		return nil, err
	}

	return &usecase.TokenResponse{Me: srv.cfg.Site.BaseURL + "/"}, nil
}

// ExchangeCode consumes the code and issues an access/refresh pair.
func (srv *indieAuthService) ExchangeCode(ctx context.Context, req usecase.ExchangeRequest) (*usecase.TokenResponse, error) {
	code, err := srv.consumeCode(ctx, req)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(code.Scope) == "" {
		// A scopeless grant authenticates but carries no authority; there is
		// nothing for a token to convey.
		return nil, domainerrors.ErrInvalidScope.WrapMessage("authorization code carries no scope")
	}

	accessToken, err := srv.tokens.NewAccessToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint access token")
	}
	refreshToken, err := srv.tokens.NewRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint refresh token")
	}

	now := time.Now().UTC()
	token := &entity.Token{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		ClientID:      code.ClientID,
		TokenType:     "Bearer",
		Scope:         code.Scope,
		ExpiresAt:     now.Add(srv.cfg.IndieAuth.AccessTokenTTL),
		LastRefreshAt: now,
		CreatedAt:     now,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewTokenRepository().CreateToken(ctx, token)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to store token", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store token")
	}

	srv.log(ctx).Info("Token issued", slog.String("clientId", code.ClientID), slog.String("scope", code.Scope))

	return srv.tokenResponse(token, now), nil
}

// consumeCode performs the atomic single-use redemption and the client and
// PKCE checks shared by both redemption endpoints.
func (srv *indieAuthService) consumeCode(ctx context.Context, req usecase.ExchangeRequest) (*entity.AuthorizationCode, error) {
	var code *entity.AuthorizationCode

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		consumed, err := repoFactory.NewTokenRepository().ConsumeAuthorizationCode(ctx, req.Code, time.Now().UTC())
		if err != nil {
			return err
		}
		code = consumed

		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrCodeConsumed) || errors.Is(err, repository.ErrCodeNotFound) {
			return nil, domainerrors.ErrInvalidGrant.WrapMessage("authorization code is invalid, expired or already used")
		}

		return nil, errors.Wrap(err, "failed to consume authorization code")
	}

	// The code is burned at this point regardless of the outcome below; a
	// failed redemption must not leave a retryable code behind.
	if code.ClientID != req.ClientID {
		return nil, domainerrors.ErrInvalidClient.WrapMessage("client_id mismatch")
	}
	if code.RedirectURI != req.RedirectURI {
		return nil, domainerrors.ErrInvalidGrant.WrapMessage("redirect_uri mismatch")
	}
	if !srv.pkce.Verify(code.CodeChallengeMethod, code.CodeChallenge, req.CodeVerifier) {
		return nil, domainerrors.ErrInvalidGrant.WrapMessage("PKCE verification failed")
	}

	return code, nil
}

// Refresh redeems a refresh token for a fresh access token.
func (srv *indieAuthService) Refresh(ctx context.Context, req usecase.RefreshRequest) (*usecase.TokenResponse, error) {
	now := time.Now().UTC()
	var refreshed *entity.Token

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.NewTokenRepository()

		current, err := tokenRepo.FindTokenByRefresh(ctx, req.ClientID, req.RefreshToken)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return domainerrors.ErrInvalidGrant.WrapMessage("unknown refresh token")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		if now.After(current.CreatedAt.Add(srv.cfg.IndieAuth.RefreshTokenTTL)) {
			return domainerrors.ErrInvalidGrant.WrapMessage("refresh token expired")
		}

		scope := current.Scope
		if req.Scope != "" {
			if !entity.ScopeSubset(req.Scope, current.Scope) {
				return domainerrors.ErrInvalidScope.WrapMessage("requested scope exceeds original grant")
			}
			scope = req.Scope
		}

		accessToken, err := srv.tokens.NewAccessToken()
		if err != nil {
			return errors.Wrap(err, "failed to mint access token")
		}

		refreshToken := current.RefreshToken
		if srv.cfg.IndieAuth.RotationMode == config.RotationRotate {
			refreshToken, err = srv.tokens.NewRefreshToken()
			if err != nil {
				return errors.Wrap(err, "failed to mint refresh token")
			}
		}

		next := &entity.Token{
			AccessToken:   accessToken,
			RefreshToken:  refreshToken,
			ClientID:      current.ClientID,
			TokenType:     current.TokenType,
			Scope:         scope,
			ExpiresAt:     now.Add(srv.cfg.IndieAuth.AccessTokenTTL),
			LastRefreshAt: now,
			CreatedAt:     current.CreatedAt,
		}

		if err := tokenRepo.UpdateToken(ctx, current.AccessToken, next); err != nil {
			return errors.Wrap(err, "failed to rotate token")
		}
		refreshed = next

		return nil
	})
	if err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to refresh token", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to refresh token")
	}

	srv.log(ctx).Info("Token refreshed", slog.String("clientId", req.ClientID))

	return srv.tokenResponse(refreshed, now), nil
}

// Verify checks an access token on a protected request.
func (srv *indieAuthService) Verify(ctx context.Context, accessToken string) (*entity.Token, error) {
	var token *entity.Token

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewTokenRepository().FindTokenByAccess(ctx, accessToken)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return domainerrors.ErrUnauthorized.WrapMessage("unknown access token")
			}

			return errors.Wrap(err, "failed to find access token")
		}
		token = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Active(time.Now().UTC()) {
		return nil, domainerrors.ErrUnauthorized.WrapMessage("access token expired or revoked")
	}

	return token, nil
}

// Introspect reports the state of a token. Inactive and unknown tokens are
// not errors; they introspect to {active: false}.
func (srv *indieAuthService) Introspect(ctx context.Context, tokenValue string) (*usecase.IntrospectionResult, error) {
	var token *entity.Token

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewTokenRepository().FindTokenByAccess(ctx, tokenValue)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to find token")
		}
		token = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	if token == nil || !token.Active(time.Now().UTC()) {
		return &usecase.IntrospectionResult{Active: false}, nil
	}

	return &usecase.IntrospectionResult{
		Active:    true,
		Me:        srv.cfg.Site.BaseURL + "/",
		ClientID:  token.ClientID,
		Scope:     token.Scope,
		ExpiresAt: token.ExpiresAt.Unix(),
		IssuedAt:  token.CreatedAt.Unix(),
	}, nil
}

// Revoke invalidates an access token immediately. Idempotent per RFC 7009.
func (srv *indieAuthService) Revoke(ctx context.Context, tokenValue string) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewTokenRepository().RevokeToken(ctx, tokenValue, time.Now().UTC())
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke token", slog.Any("error", err))

		return errors.Wrap(err, "failed to revoke token")
	}

	return nil
}

func (srv *indieAuthService) tokenResponse(token *entity.Token, now time.Time) *usecase.TokenResponse {
	return &usecase.TokenResponse{
		Me:           srv.cfg.Site.BaseURL + "/",
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		Scope:        token.Scope,
		ExpiresIn:    int64(token.ExpiresAt.Sub(now).Seconds()),
		RefreshToken: token.RefreshToken,
	}
}

// redirectAllowed accepts a redirect URI that shares scheme and host with
// the client_id, or that the client page explicitly declares.
func redirectAllowed(clientID, redirectURI string, declared []string) bool {
	clientURL, err := url.Parse(clientID)
	if err != nil {
		return false
	}
	redirectURL, err := url.Parse(redirectURI)
	if err != nil {
		return false
	}

	if clientURL.Scheme == redirectURL.Scheme && clientURL.Host == redirectURL.Host {
		return true
	}

	for _, allowed := range declared {
		if allowed == redirectURI {
			return true
		}
	}

	return false
}

func splitScopes(scope string) []string {
	return strings.Fields(scope)
}
