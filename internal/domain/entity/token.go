package entity

import "time"

// AuthorizationCode is a single-use IndieAuth authorization code. Used is
// flipped exactly once; the flip is a single-statement check-and-set so
// concurrent redemptions cannot both win.
type AuthorizationCode struct {
	Code                string    `json:"code"`
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	Scope               string    `json:"scope"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
	Used                bool      `json:"used"`
	ExpiresAt           time.Time `json:"expires_at"`
	CreatedAt           time.Time `json:"created_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Token is an access/refresh pair issued at code exchange. The access token
// string is the identity of the row; refresh may be empty when the client
// did not ask for offline access.
type Token struct {
	AccessToken   string    `json:"access_token"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	ClientID      string    `json:"client_id"`
	TokenType     string    `json:"token_type"`
	Scope         string    `json:"scope"`
	ExpiresAt     time.Time `json:"expires_at"`
	LastRefreshAt time.Time `json:"last_refresh_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Active reports whether the access token is usable at the given instant.
// Revocation is expressed by moving ExpiresAt into the past.
func (t *Token) Active(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// Scopes returns the scope string split into its parts.
func (t *Token) Scopes() []string {
	return splitScope(t.Scope)
}

// HasScope reports whether the token grants the given scope.
func (t *Token) HasScope(scope string) bool {
	for _, s := range t.Scopes() {
		if s == scope {
			return true
		}
	}

	return false
}

func splitScope(scope string) []string {
	var out []string
	start := -1
	for i, r := range scope {
		if r == ' ' {
			if start >= 0 {
				out = append(out, scope[start:i])
				start = -1
			}

			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, scope[start:])
	}

	return out
}

// ScopeSubset reports whether every requested scope is contained in granted.
func ScopeSubset(requested, granted string) bool {
	have := make(map[string]struct{})
	for _, s := range splitScope(granted) {
		have[s] = struct{}{}
	}
	for _, s := range splitScope(requested) {
		if _, ok := have[s]; !ok {
			return false
		}
	}

	return true
}
