package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToken_ActiveBoundary(t *testing.T) {
	now := time.Now().UTC()
	token := Token{ExpiresAt: now}

	assert.False(t, token.Active(now))
	assert.True(t, token.Active(now.Add(-time.Second)))
	assert.False(t, token.Active(now.Add(time.Second)))
}

func TestToken_HasScope(t *testing.T) {
	token := Token{Scope: "create update media"}

	assert.True(t, token.HasScope("update"))
	assert.False(t, token.HasScope("delete"))
	assert.Equal(t, []string{"create", "update", "media"}, token.Scopes())
}

func TestScopeSubset(t *testing.T) {
	assert.True(t, ScopeSubset("create", "create update"))
	assert.True(t, ScopeSubset("", "create"))
	assert.True(t, ScopeSubset("create update", "update create"))
	assert.False(t, ScopeSubset("create delete", "create update"))
	assert.False(t, ScopeSubset("create", ""))
}

func TestAuthorizationCode_Expired(t *testing.T) {
	now := time.Now().UTC()
	code := AuthorizationCode{ExpiresAt: now.Add(10 * time.Minute)}

	assert.False(t, code.Expired(now))
	assert.True(t, code.Expired(now.Add(10*time.Minute)))
}
