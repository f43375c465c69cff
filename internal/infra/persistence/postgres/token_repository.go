package postgres

import (
	"context"
	"time"

	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// tokenRepository implements the domain.TokenRepository interface using GORM.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository is the constructor for tokenRepository.
func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// CreateAuthorizationCode persists a fresh, unused code.
func (repo *tokenRepository) CreateAuthorizationCode(ctx context.Context, code *entity.AuthorizationCode) error {
	codeM := fromAuthorizationCodeDomain(code)

	if err := repo.db.WithContext(ctx).Create(codeM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrInvalidGrant.WrapMessage("authorization code already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create authorization code")
	}

	return nil
}

// ConsumeAuthorizationCode atomically flips the used flag. The guard on
// used = false and expires_at > now runs in a single UPDATE, so of any number
// of concurrent redemptions exactly one sees RowsAffected == 1.
func (repo *tokenRepository) ConsumeAuthorizationCode(ctx context.Context, code string, now time.Time) (*entity.AuthorizationCode, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.AuthorizationCodeModel{}).
		Where("code = ? AND used = ? AND expires_at > ?", code, false, now).
		Update("used", true)
	if result.Error != nil {
		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to consume authorization code")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrCodeConsumed
	}

	var codeM model.AuthorizationCodeModel
	if err := repo.db.WithContext(ctx).
		Where("code = ?", code).
		First(&codeM).Error; err != nil {
		return nil, errors.Wrap(err, "failed to reload consumed authorization code")
	}

	return toAuthorizationCodeDomain(&codeM), nil
}

// CreateToken persists a new access/refresh pair.
func (repo *tokenRepository) CreateToken(ctx context.Context, token *entity.Token) error {
	tokenM := fromTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrInvalidGrant.WrapMessage("token already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create token")
	}

	return nil
}

// FindTokenByAccess retrieves a token row by its access token string.
func (repo *tokenRepository) FindTokenByAccess(ctx context.Context, accessToken string) (*entity.Token, error) {
	var tokenM model.TokenModel
	if err := repo.db.WithContext(ctx).
		Where("access_token = ?", accessToken).
		First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find token by access token")
	}

	return toTokenDomain(&tokenM), nil
}

// FindTokenByRefresh retrieves a token row by its refresh token string,
// scoped to the client that owns it.
func (repo *tokenRepository) FindTokenByRefresh(ctx context.Context, clientID, refreshToken string) (*entity.Token, error) {
	var tokenM model.TokenModel
	if err := repo.db.WithContext(ctx).
		Where("refresh_token = ? AND client_id = ?", refreshToken, clientID).
		First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find token by refresh token")
	}

	return toTokenDomain(&tokenM), nil
}

// UpdateToken replaces the token strings, scope and expiry in place. The row
// is addressed by the access token it held before the refresh.
func (repo *tokenRepository) UpdateToken(ctx context.Context, previousAccess string, token *entity.Token) error {
	tokenM := fromTokenDomain(token)

	result := repo.db.WithContext(ctx).
		Model(&model.TokenModel{}).
		Where("access_token = ?", previousAccess).
		Updates(map[string]any{
			"access_token":    tokenM.AccessToken,
			"refresh_token":   tokenM.RefreshToken,
			"scope":           tokenM.Scope,
			"expires_at":      tokenM.ExpiresAt,
			"last_refresh_at": tokenM.LastRefreshAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTokenNotFound
	}

	return nil
}

// RevokeToken expires an access token immediately. Idempotent.
func (repo *tokenRepository) RevokeToken(ctx context.Context, accessToken string, at time.Time) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.TokenModel{}).
		Where("access_token = ?", accessToken).
		Update("expires_at", at).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to revoke token")
	}

	return nil
}

// fromAuthorizationCodeDomain maps a pure domain entity to a GORM persistence model.
func fromAuthorizationCodeDomain(code *entity.AuthorizationCode) *model.AuthorizationCodeModel {
	return &model.AuthorizationCodeModel{
		Code:                code.Code,
		ClientID:            code.ClientID,
		RedirectURI:         code.RedirectURI,
		Scope:               code.Scope,
		CodeChallenge:       code.CodeChallenge,
		CodeChallengeMethod: code.CodeChallengeMethod,
		Used:                code.Used,
		ExpiresAt:           code.ExpiresAt,
		CreatedAt:           code.CreatedAt,
	}
}

// toAuthorizationCodeDomain maps a persistence model back to a pure domain entity.
func toAuthorizationCodeDomain(codeM *model.AuthorizationCodeModel) *entity.AuthorizationCode {
	return &entity.AuthorizationCode{
		Code:                codeM.Code,
		ClientID:            codeM.ClientID,
		RedirectURI:         codeM.RedirectURI,
		Scope:               codeM.Scope,
		CodeChallenge:       codeM.CodeChallenge,
		CodeChallengeMethod: codeM.CodeChallengeMethod,
		Used:                codeM.Used,
		ExpiresAt:           codeM.ExpiresAt,
		CreatedAt:           codeM.CreatedAt,
	}
}

func fromTokenDomain(token *entity.Token) *model.TokenModel {
	var refresh *string
	if token.RefreshToken != "" {
		refresh = &token.RefreshToken
	}

	return &model.TokenModel{
		AccessToken:   token.AccessToken,
		RefreshToken:  refresh,
		ClientID:      token.ClientID,
		TokenType:     token.TokenType,
		Scope:         token.Scope,
		ExpiresAt:     token.ExpiresAt,
		LastRefreshAt: token.LastRefreshAt,
		CreatedAt:     token.CreatedAt,
	}
}

func toTokenDomain(tokenM *model.TokenModel) *entity.Token {
	token := &entity.Token{
		AccessToken:   tokenM.AccessToken,
		ClientID:      tokenM.ClientID,
		TokenType:     tokenM.TokenType,
		Scope:         tokenM.Scope,
		ExpiresAt:     tokenM.ExpiresAt,
		LastRefreshAt: tokenM.LastRefreshAt,
		CreatedAt:     tokenM.CreatedAt,
	}
	if tokenM.RefreshToken != nil {
		token.RefreshToken = *tokenM.RefreshToken
	}

	return token
}
