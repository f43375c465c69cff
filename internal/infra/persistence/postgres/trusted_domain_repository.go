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
	"gorm.io/gorm/clause"
)

// trustedDomainRepository implements the domain.TrustedDomainRepository
// interface using GORM.
type trustedDomainRepository struct {
	db *gorm.DB
}

// NewTrustedDomainRepository is the constructor for trustedDomainRepository.
func NewTrustedDomainRepository(db *gorm.DB) repository.TrustedDomainRepository {
	return &trustedDomainRepository{db: db}
}

// AddTrustedDomain inserts a domain; re-adding an existing one is a no-op.
func (repo *trustedDomainRepository) AddTrustedDomain(ctx context.Context, domain string) error {
	row := &model.TrustedDomainModel{
		Domain:    domain,
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to add trusted domain")
	}

	return nil
}

// RemoveTrustedDomain deletes a domain from the allow-list.
func (repo *trustedDomainRepository) RemoveTrustedDomain(ctx context.Context, domain string) error {
	if err := repo.db.WithContext(ctx).
		Where("domain = ?", domain).
		Delete(&model.TrustedDomainModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to remove trusted domain")
	}

	return nil
}

// IsTrustedDomain reports whether the domain is allow-listed.
func (repo *trustedDomainRepository) IsTrustedDomain(ctx context.Context, domain string) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.TrustedDomainModel{}).
		Where("domain = ?", domain).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check trusted domain")
	}

	return count > 0, nil
}

// ListTrustedDomains returns the full allow-list.
func (repo *trustedDomainRepository) ListTrustedDomains(ctx context.Context) ([]*entity.TrustedDomain, error) {
	var rows []*model.TrustedDomainModel
	if err := repo.db.WithContext(ctx).
		Order("domain ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list trusted domains")
	}

	domains := make([]*entity.TrustedDomain, 0, len(rows))
	for _, row := range rows {
		domains = append(domains, &entity.TrustedDomain{
			Domain:    row.Domain,
			CreatedAt: row.CreatedAt,
		})
	}

	return domains, nil
}
