package usecase

import (
	"context"

	"plume/internal/domain/entity"
)

// TrustedDomainUsecase defines the interface for managing the verification
// allow-list.
type TrustedDomainUsecase interface {
	AddTrustedDomain(ctx context.Context, domain string) error
	RemoveTrustedDomain(ctx context.Context, domain string) error
	ListTrustedDomains(ctx context.Context) ([]*entity.TrustedDomain, error)
}
