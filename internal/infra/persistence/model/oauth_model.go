package model

import "time"

// AuthorizationCodeModel mirrors the 'oauth_authorization_codes' table.
type AuthorizationCodeModel struct {
	Code                string    `gorm:"type:varchar(64);primary_key"`
	ClientID            string    `gorm:"type:text;not null"`
	RedirectURI         string    `gorm:"type:text;not null"`
	Scope               string    `gorm:"type:text;not null;default:''"`
	CodeChallenge       string    `gorm:"type:varchar(128);not null"`
	CodeChallengeMethod string    `gorm:"type:varchar(16);not null"`
	Used                bool      `gorm:"not null;default:false"`
	ExpiresAt           time.Time `gorm:"not null;index"`
	CreatedAt           time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (AuthorizationCodeModel) TableName() string {
	return "oauth_authorization_codes"
}

// TokenModel mirrors the 'oauth_tokens' table. Revocation is an expiry set
// to the revocation instant, so reads need no extra flag.
type TokenModel struct {
	AccessToken   string    `gorm:"type:varchar(64);primary_key"`
	RefreshToken  *string   `gorm:"type:varchar(64);uniqueIndex"`
	ClientID      string    `gorm:"type:text;not null;index"`
	TokenType     string    `gorm:"type:varchar(16);not null"`
	Scope         string    `gorm:"type:text;not null;default:''"`
	ExpiresAt     time.Time `gorm:"not null;index"`
	LastRefreshAt time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (TokenModel) TableName() string {
	return "oauth_tokens"
}
