package impl

import (
	"context"
	"net/url"
	"testing"
	"time"

	"plume/config"
	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/domain/service"
	mockRepo "plume/internal/mocks/repository"
	mockService "plume/internal/mocks/service"
	"plume/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type indieAuthFixture struct {
	tokenRepo *mockRepo.MockTokenRepository
	resolver  *mockService.MockClientResolver
	tokens    *mockService.MockTokenSource
	pkce      *mockService.MockCodeChallengeVerifier
	cfg       *config.Config
	srv       usecase.IndieAuthUsecase
}

func newIndieAuthFixture(t *testing.T) *indieAuthFixture {
	t.Helper()

	f := &indieAuthFixture{
		tokenRepo: mockRepo.NewMockTokenRepository(t),
		resolver:  mockService.NewMockClientResolver(t),
		tokens:    mockService.NewMockTokenSource(t),
		pkce:      mockService.NewMockCodeChallengeVerifier(t),
		cfg:       testSiteConfig(),
	}

	txManager := &mockRepo.StubTransactionManager{
		Factory: &mockRepo.StubRepositoryFactory{TokenRepo: f.tokenRepo},
	}
	f.srv = NewIndieAuthService(txManager, f.resolver, f.tokens, f.pkce, f.cfg, testLogger())

	return f
}

func authRequest() usecase.AuthorizationRequest {
	return usecase.AuthorizationRequest{
		ClientID:            "https://app.example/",
		RedirectURI:         "https://app.example/callback",
		State:               "xyz",
		CodeChallenge:       "challenge-value",
		CodeChallengeMethod: "S256",
		Scope:               "create update",
	}
}

func exchangeRequest(code string) usecase.ExchangeRequest {
	return usecase.ExchangeRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     "https://app.example/",
		RedirectURI:  "https://app.example/callback",
		CodeVerifier: "verifier-value",
	}
}

func storedCode(scope string) *entity.AuthorizationCode {
	now := time.Now().UTC()

	return &entity.AuthorizationCode{
		Code:                "code-1",
		ClientID:            "https://app.example/",
		RedirectURI:         "https://app.example/callback",
		Scope:               scope,
		CodeChallenge:       "challenge-value",
		CodeChallengeMethod: "S256",
		Used:                true,
		ExpiresAt:           now.Add(10 * time.Minute),
		CreatedAt:           now,
	}
}

func TestApprove_RedirectCarriesCodeStateAndIssuer(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.resolver.EXPECT().Resolve(ctx, "https://app.example/").
		Return(&service.ClientMetadata{Name: "App"}, nil)
	f.tokens.EXPECT().NewAuthorizationCode().Return("code-1", nil)

	var stored *entity.AuthorizationCode
	f.tokenRepo.EXPECT().CreateAuthorizationCode(ctx, mock.AnythingOfType("*entity.AuthorizationCode")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*entity.AuthorizationCode)
		}).
		Return(nil)

	redirect, err := f.srv.Approve(ctx, authRequest(), "")
	require.NoError(t, err)
	require.NotNil(t, stored)

	parsed, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "code-1", parsed.Query().Get("code"))
	assert.Equal(t, "xyz", parsed.Query().Get("state"))
	assert.Equal(t, "https://example.com/", parsed.Query().Get("iss"))

	assert.Equal(t, "create update", stored.Scope)
	assert.Equal(t, "challenge-value", stored.CodeChallenge)
	assert.WithinDuration(t, time.Now().UTC().Add(f.cfg.IndieAuth.CodeTTL), stored.ExpiresAt, 5*time.Second)
}

func TestApprove_ConsentMayNarrowScope(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.resolver.EXPECT().Resolve(ctx, "https://app.example/").
		Return(&service.ClientMetadata{}, nil)
	f.tokens.EXPECT().NewAuthorizationCode().Return("code-1", nil)

	var stored *entity.AuthorizationCode
	f.tokenRepo.EXPECT().CreateAuthorizationCode(ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*entity.AuthorizationCode)
		}).
		Return(nil)

	_, err := f.srv.Approve(ctx, authRequest(), "create")
	require.NoError(t, err)
	assert.Equal(t, "create", stored.Scope)
}

func TestApprove_ConsentCannotWidenScope(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.resolver.EXPECT().Resolve(ctx, "https://app.example/").
		Return(&service.ClientMetadata{}, nil)

	_, err := f.srv.Approve(ctx, authRequest(), "create update delete")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidScope)
}

func TestApprove_RejectsForeignRedirect(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.resolver.EXPECT().Resolve(ctx, "https://app.example/").
		Return(&service.ClientMetadata{}, nil)

	req := authRequest()
	req.RedirectURI = "https://attacker.example/grab"

	_, err := f.srv.Approve(ctx, req, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidClient)
}

func TestApprove_AcceptsDeclaredRedirect(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.resolver.EXPECT().Resolve(ctx, "https://app.example/").
		Return(&service.ClientMetadata{RedirectURIs: []string{"https://other.example/cb"}}, nil)
	f.tokens.EXPECT().NewAuthorizationCode().Return("code-1", nil)
	f.tokenRepo.EXPECT().CreateAuthorizationCode(ctx, mock.Anything).Return(nil)

	req := authRequest()
	req.RedirectURI = "https://other.example/cb"

	_, err := f.srv.Approve(ctx, req, "")
	require.NoError(t, err)
}

func TestExchangeCode_IssuesTokenPair(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.tokenRepo.EXPECT().ConsumeAuthorizationCode(ctx, "code-1", mock.AnythingOfType("time.Time")).
		Return(storedCode("create update"), nil)
	f.pkce.EXPECT().Verify("S256", "challenge-value", "verifier-value").Return(true)
	f.tokens.EXPECT().NewAccessToken().Return("pa_access", nil)
	f.tokens.EXPECT().NewRefreshToken().Return("pr_refresh", nil)
	f.tokenRepo.EXPECT().CreateToken(ctx, mock.AnythingOfType("*entity.Token")).Return(nil)

	resp, err := f.srv.ExchangeCode(ctx, exchangeRequest("code-1"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/", resp.Me)
	assert.Equal(t, "pa_access", resp.AccessToken)
	assert.Equal(t, "pr_refresh", resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "create update", resp.Scope)
	assert.InDelta(t, f.cfg.IndieAuth.AccessTokenTTL.Seconds(), float64(resp.ExpiresIn), 5)
}

func TestExchangeCode_SecondRedemptionFails(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.tokenRepo.EXPECT().ConsumeAuthorizationCode(ctx, "code-1", mock.Anything).
		Return(nil, repository.ErrCodeConsumed)

	_, err := f.srv.ExchangeCode(ctx, exchangeRequest("code-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
}

func TestExchangeCode_ConcurrentRedemptionsSingleWinner(t *testing.T) {
	f := newIndieAuthFixture(t)

	// The repository contract serializes redemptions: the used-flag
	// check-and-set succeeds for exactly one caller.
	f.tokenRepo.EXPECT().ConsumeAuthorizationCode(mock.Anything, "code-1", mock.Anything).
		Return(storedCode("create"), nil).
		Once()
	f.tokenRepo.EXPECT().ConsumeAuthorizationCode(mock.Anything, "code-1", mock.Anything).
		Return(nil, repository.ErrCodeConsumed).
		Once()
	f.pkce.EXPECT().Verify("S256", "challenge-value", "verifier-value").Return(true)
	f.tokens.EXPECT().NewAccessToken().Return("pa_access", nil)
	f.tokens.EXPECT().NewRefreshToken().Return("pr_refresh", nil)
	f.tokenRepo.EXPECT().CreateToken(mock.Anything, mock.Anything).Return(nil)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := f.srv.ExchangeCode(context.Background(), exchangeRequest("code-1"))
			results <- err
		}()
	}

	var wins, losses int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			wins++
		case errors.Is(err, domainerrors.ErrInvalidGrant):
			losses++
		default:
			t.Fatalf("unexpected exchange error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestExchangeCode_PKCEMismatchBurnsCode(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	// The atomic consume happens before the PKCE check, so the code is gone
	// even though this redemption fails.
	f.tokenRepo.EXPECT().ConsumeAuthorizationCode(ctx, "code-1", mock.Anything).
		Return(storedCode("create"), nil)
	f.pkce.EXPECT().Verify("S256", "challenge-value", "verifier-value").Return(false)

	_, err := f.srv.ExchangeCode(ctx, exchangeRequest("code-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
	f.tokenRepo.AssertCalled(t, "ConsumeAuthorizationCode", ctx, "code-1", mock.Anything)
}

func TestExchangeCode_ClientMismatch(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	code := storedCode("create")
	code.ClientID = "https://someone-else.example/"
	f.tokenRepo.EXPECT().ConsumeAuthorizationCode(ctx, "code-1", mock.Anything).Return(code, nil)

	_, err := f.srv.ExchangeCode(ctx, exchangeRequest("code-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidClient)
}

func TestExchangeCode_ScopelessGrantIssuesNoToken(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.tokenRepo.EXPECT().ConsumeAuthorizationCode(ctx, "code-1", mock.Anything).
		Return(storedCode(""), nil)
	f.pkce.EXPECT().Verify("S256", "challenge-value", "verifier-value").Return(true)

	_, err := f.srv.ExchangeCode(ctx, exchangeRequest("code-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidScope)
}

func TestRedeemCodeForProfile_ReturnsIdentityOnly(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.tokenRepo.EXPECT().ConsumeAuthorizationCode(ctx, "code-1", mock.Anything).
		Return(storedCode("profile"), nil)
	f.pkce.EXPECT().Verify("S256", "challenge-value", "verifier-value").Return(true)

	resp, err := f.srv.RedeemCodeForProfile(ctx, exchangeRequest("code-1"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", resp.Me)
	assert.Empty(t, resp.AccessToken)
}

func activeToken() *entity.Token {
	now := time.Now().UTC()

	return &entity.Token{
		AccessToken:   "pa_access",
		RefreshToken:  "pr_refresh",
		ClientID:      "https://app.example/",
		TokenType:     "Bearer",
		Scope:         "create update",
		ExpiresAt:     now.Add(time.Hour),
		LastRefreshAt: now.Add(-time.Hour),
		CreatedAt:     now.Add(-time.Hour),
	}
}

func TestRefresh_RotatesByDefault(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	current := activeToken()
	f.tokenRepo.EXPECT().FindTokenByRefresh(ctx, "https://app.example/", "pr_refresh").
		Return(current, nil)
	f.tokens.EXPECT().NewAccessToken().Return("pa_next", nil)
	f.tokens.EXPECT().NewRefreshToken().Return("pr_next", nil)

	var next *entity.Token
	f.tokenRepo.EXPECT().UpdateToken(ctx, "pa_access", mock.AnythingOfType("*entity.Token")).
		Run(func(args mock.Arguments) {
			next = args.Get(2).(*entity.Token)
		}).
		Return(nil)

	resp, err := f.srv.Refresh(ctx, usecase.RefreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: "pr_refresh",
		ClientID:     "https://app.example/",
	})
	require.NoError(t, err)

	assert.Equal(t, "pa_next", resp.AccessToken)
	assert.Equal(t, "pr_next", resp.RefreshToken)
	assert.Equal(t, current.CreatedAt, next.CreatedAt)
}

func TestRefresh_ReuseModeKeepsRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)
	f.cfg.IndieAuth.RotationMode = config.RotationReuse

	f.tokenRepo.EXPECT().FindTokenByRefresh(ctx, "https://app.example/", "pr_refresh").
		Return(activeToken(), nil)
	f.tokens.EXPECT().NewAccessToken().Return("pa_next", nil)
	f.tokenRepo.EXPECT().UpdateToken(ctx, "pa_access", mock.Anything).Return(nil)

	resp, err := f.srv.Refresh(ctx, usecase.RefreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: "pr_refresh",
		ClientID:     "https://app.example/",
	})
	require.NoError(t, err)
	assert.Equal(t, "pr_refresh", resp.RefreshToken)
}

func TestRefresh_ScopeMayOnlyNarrow(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.tokenRepo.EXPECT().FindTokenByRefresh(ctx, "https://app.example/", "pr_refresh").
		Return(activeToken(), nil)

	_, err := f.srv.Refresh(ctx, usecase.RefreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: "pr_refresh",
		ClientID:     "https://app.example/",
		Scope:        "create update delete",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidScope)
}

func TestRefresh_ExpiredRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	stale := activeToken()
	stale.CreatedAt = time.Now().UTC().Add(-f.cfg.IndieAuth.RefreshTokenTTL - time.Hour)
	f.tokenRepo.EXPECT().FindTokenByRefresh(ctx, "https://app.example/", "pr_refresh").
		Return(stale, nil)

	_, err := f.srv.Refresh(ctx, usecase.RefreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: "pr_refresh",
		ClientID:     "https://app.example/",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
}

func TestVerify_ExpiredTokenIsUnauthorized(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	expired := activeToken()
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	f.tokenRepo.EXPECT().FindTokenByAccess(ctx, "pa_access").Return(expired, nil)

	_, err := f.srv.Verify(ctx, "pa_access")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestIntrospect_UnknownTokenIsInactiveNotError(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.tokenRepo.EXPECT().FindTokenByAccess(ctx, "pa_gone").
		Return(nil, repository.ErrTokenNotFound)

	result, err := f.srv.Introspect(ctx, "pa_gone")
	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.Empty(t, result.ClientID)
}

func TestIntrospect_ActiveToken(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	token := activeToken()
	f.tokenRepo.EXPECT().FindTokenByAccess(ctx, "pa_access").Return(token, nil)

	result, err := f.srv.Introspect(ctx, "pa_access")
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, "https://example.com/", result.Me)
	assert.Equal(t, "create update", result.Scope)
	assert.Equal(t, token.ExpiresAt.Unix(), result.ExpiresAt)
}

func TestRevoke_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newIndieAuthFixture(t)

	f.tokenRepo.EXPECT().RevokeToken(ctx, "pa_access", mock.AnythingOfType("time.Time")).
		Return(nil).
		Twice()

	require.NoError(t, f.srv.Revoke(ctx, "pa_access"))
	require.NoError(t, f.srv.Revoke(ctx, "pa_access"))
}
