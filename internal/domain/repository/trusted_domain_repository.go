package repository

import (
	"context"

	"plume/internal/domain/entity"
)

// TrustedDomainRepository defines the interface for the verification
// allow-list.
type TrustedDomainRepository interface {
	// AddTrustedDomain inserts a domain; inserting an existing domain is a
	// no-op.
	AddTrustedDomain(ctx context.Context, domain string) error

	// RemoveTrustedDomain deletes a domain from the allow-list.
	RemoveTrustedDomain(ctx context.Context, domain string) error

	// IsTrustedDomain reports whether the domain is allow-listed.
	IsTrustedDomain(ctx context.Context, domain string) (bool, error)

	// ListTrustedDomains returns the full allow-list.
	ListTrustedDomains(ctx context.Context) ([]*entity.TrustedDomain, error)
}
