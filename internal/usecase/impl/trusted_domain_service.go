package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "plume/internal/delivery/context"
	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/usecase"

	"github.com/pkg/errors"
)

// trustedDomainService implements the TrustedDomainUsecase interface.
type trustedDomainService struct {
	repo   repository.TrustedDomainRepository
	logger *slog.Logger
}

// NewTrustedDomainService is the constructor for trustedDomainService.
func NewTrustedDomainService(
	repo repository.TrustedDomainRepository,
	logger *slog.Logger,
) usecase.TrustedDomainUsecase {
	return &trustedDomainService{
		repo:   repo,
		logger: logger,
	}
}

func (srv *trustedDomainService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// AddTrustedDomain allow-lists a domain. Idempotent.
func (srv *trustedDomainService) AddTrustedDomain(ctx context.Context, domain string) error {
	domain = normalizeDomain(domain)
	if domain == "" {
		return domainerrors.ErrInvalidRequest.WrapMessage("domain must not be empty")
	}

	if err := srv.repo.AddTrustedDomain(ctx, domain); err != nil {
		srv.log(ctx).Error("Failed to add trusted domain", slog.String("domain", domain), slog.Any("error", err))

		return errors.Wrap(err, "failed to add trusted domain")
	}

	srv.log(ctx).Info("Trusted domain added", slog.String("domain", domain))

	return nil
}

// RemoveTrustedDomain drops a domain from the allow-list.
func (srv *trustedDomainService) RemoveTrustedDomain(ctx context.Context, domain string) error {
	domain = normalizeDomain(domain)
	if domain == "" {
		return domainerrors.ErrInvalidRequest.WrapMessage("domain must not be empty")
	}

	if err := srv.repo.RemoveTrustedDomain(ctx, domain); err != nil {
		return errors.Wrap(err, "failed to remove trusted domain")
	}

	srv.log(ctx).Info("Trusted domain removed", slog.String("domain", domain))

	return nil
}

// ListTrustedDomains returns the full allow-list.
func (srv *trustedDomainService) ListTrustedDomains(ctx context.Context) ([]*entity.TrustedDomain, error) {
	domains, err := srv.repo.ListTrustedDomains(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list trusted domains")
	}

	return domains, nil
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
