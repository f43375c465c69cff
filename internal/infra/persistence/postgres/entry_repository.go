package postgres

import (
	"context"
	"encoding/json"
	"time"

	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// entryRepository implements the domain.EntryRepository interface using GORM.
type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository is the constructor for entryRepository.
func NewEntryRepository(db *gorm.DB) repository.EntryRepository {
	return &entryRepository{db: db}
}

// CreateEntry persists a new entry row.
func (repo *entryRepository) CreateEntry(ctx context.Context, entry *entity.Entry) error {
	entryM, err := fromEntryDomain(entry)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(entryM).Error; err != nil {
		// The partial unique index on live locations surfaces here.
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateLocation
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrInvalidRequest.WrapMessage("missing required entry information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create entry")
	}

	return nil
}

// FindEntryByUUID retrieves an entry by UUID, tombstones included.
func (repo *entryRepository) FindEntryByUUID(ctx context.Context, id uuid.UUID) (*entity.Entry, error) {
	var entryM model.EntryModel
	if err := repo.db.WithContext(ctx).
		Where("uuid = ?", id).
		First(&entryM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEntryNotFound
		}

		return nil, errors.Wrap(err, "failed to find entry by uuid")
	}

	return toEntryDomain(&entryM)
}

// FindEntryByLocation retrieves a live entry by its canonical URL.
func (repo *entryRepository) FindEntryByLocation(ctx context.Context, location string) (*entity.Entry, error) {
	var entryM model.EntryModel
	if err := repo.db.WithContext(ctx).
		Where("location = ? AND deleted = ?", location, false).
		First(&entryM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEntryNotFound
		}

		return nil, errors.Wrap(err, "failed to find entry by location")
	}

	return toEntryDomain(&entryM)
}

// UpdateEntry persists content and timestamp changes. UUID and creation time
// stay as stored.
func (repo *entryRepository) UpdateEntry(ctx context.Context, entry *entity.Entry) error {
	entryM, err := fromEntryDomain(entry)
	if err != nil {
		return err
	}

	result := repo.db.WithContext(ctx).
		Model(&model.EntryModel{}).
		Where("uuid = ?", entryM.UUID).
		Updates(map[string]any{
			"location":         entryM.Location,
			"content":          entryM.Content,
			"last_modified_at": entryM.LastModifiedAt,
		})
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrDuplicateLocation
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update entry")
	}
	if result.RowsAffected == 0 {
		return repository.ErrEntryNotFound
	}

	return nil
}

// SetDeleted flips the soft-delete flag and bumps the modification time.
func (repo *entryRepository) SetDeleted(ctx context.Context, id uuid.UUID, deleted bool) error {
	result := repo.db.WithContext(ctx).
		Model(&model.EntryModel{}).
		Where("uuid = ?", id).
		Updates(map[string]any{
			"deleted":          deleted,
			"last_modified_at": time.Now().UTC(),
		})
	if result.Error != nil {
		// Undeleting can collide with a live entry that claimed the URL.
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrDuplicateLocation
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to set entry deleted flag")
	}
	if result.RowsAffected == 0 {
		return repository.ErrEntryNotFound
	}

	return nil
}

// SearchEntries runs a full-text query over live entry content, newest first.
func (repo *entryRepository) SearchEntries(ctx context.Context, needle string, limit, offset int) ([]*entity.Entry, error) {
	var entryMs []*model.EntryModel
	if err := repo.db.WithContext(ctx).
		Where("deleted = ?", false).
		Where("to_tsvector('english', content::text) @@ websearch_to_tsquery('english', ?)", needle).
		Order("last_modified_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entryMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to search entries")
	}

	return toEntryDomainList(entryMs)
}

// ListRecentEntries returns live entries ordered by last modification.
func (repo *entryRepository) ListRecentEntries(ctx context.Context, limit int) ([]*entity.Entry, error) {
	var entryMs []*model.EntryModel
	if err := repo.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("last_modified_at DESC").
		Limit(limit).
		Find(&entryMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list recent entries")
	}

	return toEntryDomainList(entryMs)
}

// fromEntryDomain maps a pure domain entity to a GORM persistence model.
func fromEntryDomain(entry *entity.Entry) (*model.EntryModel, error) {
	content, err := json.Marshal(&entry.Content)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal entry content")
	}

	var location *string
	if entry.Location != "" {
		location = &entry.Location
	}

	return &model.EntryModel{
		UUID:           entry.UUID,
		Author:         entry.Author,
		Location:       location,
		Content:        content,
		Deleted:        entry.Deleted,
		CreatedAt:      entry.CreatedAt,
		LastModifiedAt: entry.LastModifiedAt,
	}, nil
}

// toEntryDomain maps a persistence model back to a pure domain entity.
func toEntryDomain(entryM *model.EntryModel) (*entity.Entry, error) {
	entry := &entity.Entry{
		UUID:           entryM.UUID,
		Author:         entryM.Author,
		Deleted:        entryM.Deleted,
		CreatedAt:      entryM.CreatedAt,
		LastModifiedAt: entryM.LastModifiedAt,
	}
	if entryM.Location != nil {
		entry.Location = *entryM.Location
	}
	if err := json.Unmarshal(entryM.Content, &entry.Content); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal entry content")
	}

	return entry, nil
}

func toEntryDomainList(entryMs []*model.EntryModel) ([]*entity.Entry, error) {
	entries := make([]*entity.Entry, 0, len(entryMs))
	for _, entryM := range entryMs {
		entry, err := toEntryDomain(entryM)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
