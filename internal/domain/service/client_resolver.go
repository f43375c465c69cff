// Package service defines interfaces for outbound collaborators of the
// protocol subsystems. Implementations live under internal/infra.
package service

import "context"

// ClientMetadata describes an IndieAuth client application, discovered by
// fetching its client_id URL.
type ClientMetadata struct {
	ClientID string
	Name     string
	// RedirectURIs are the redirect endpoints the client declares, via HTTP
	// Link headers or <link rel="redirect_uri"> elements.
	RedirectURIs []string
}

// ClientResolver fetches client metadata during an authorization request.
type ClientResolver interface {
	// Resolve fetches the client_id URL and extracts its metadata. A fetch
	// failure yields metadata with no declared redirect URIs rather than an
	// error: same-origin redirect URIs must still be accepted when the
	// client page is unreachable.
	Resolve(ctx context.Context, clientID string) (*ClientMetadata, error)
}
