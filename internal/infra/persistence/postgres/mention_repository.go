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
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mentionRepository implements the domain.MentionRepository interface using
// GORM. Incoming and outgoing mentions live in separate tables with the same
// shape; the direction on the entity picks the table.
type mentionRepository struct {
	db *gorm.DB
}

// NewMentionRepository is the constructor for mentionRepository.
func NewMentionRepository(db *gorm.DB) repository.MentionRepository {
	return &mentionRepository{db: db}
}

// UpsertMention inserts the mention or refreshes the existing
// (source, target) row for its direction. The stored UUID wins on conflict.
func (repo *mentionRepository) UpsertMention(ctx context.Context, mention *entity.Mention) (*entity.Mention, error) {
	snapshot, err := marshalSnapshot(mention.Snapshot)
	if err != nil {
		return nil, err
	}

	var vouch *string
	if mention.Vouch != "" {
		vouch = &mention.Vouch
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "source"}, {Name: "target"}},
		DoUpdates: clause.Assignments(map[string]any{
			"vouch":            vouch,
			"status":           string(mention.Status),
			"message":          mention.Message,
			"last_modified_at": mention.LastModifiedAt,
		}),
	}

	row := model.IncomingMentionModel{
		UUID:           mention.UUID,
		Source:         mention.Source,
		Target:         mention.Target,
		Vouch:          vouch,
		Status:         string(mention.Status),
		Message:        mention.Message,
		Snapshot:       snapshot,
		CreatedAt:      mention.CreatedAt,
		LastModifiedAt: mention.LastModifiedAt,
	}

	if mention.Direction == entity.MentionOutgoing {
		outRow := model.OutgoingMentionModel(row)
		if err := repo.db.WithContext(ctx).Clauses(onConflict).Create(&outRow).Error; err != nil {
			return nil, domainerrors.NewDatabaseExecuteError(err, "failed to upsert outgoing mention")
		}

		return repo.findOutgoingBySourceTarget(ctx, mention.Source, mention.Target)
	}

	if err := repo.db.WithContext(ctx).Clauses(onConflict).Create(&row).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to upsert incoming mention")
	}

	return repo.findIncomingBySourceTarget(ctx, mention.Source, mention.Target)
}

// UpdateMentionStatus transitions a mention's status, message and optional
// snapshot. The row may live in either table; the incoming side is tried
// first because status transitions are dominated by inbound verification.
func (repo *mentionRepository) UpdateMentionStatus(ctx context.Context, id uuid.UUID, status entity.MentionStatus, message string, snapshot *entity.Document) error {
	updates := map[string]any{
		"status":           string(status),
		"message":          message,
		"last_modified_at": time.Now().UTC(),
	}
	if snapshot != nil {
		raw, err := marshalSnapshot(snapshot)
		if err != nil {
			return err
		}
		updates["snapshot"] = raw
	}

	result := repo.db.WithContext(ctx).
		Model(&model.IncomingMentionModel{}).
		Where("uuid = ?", id).
		Updates(updates)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update incoming mention status")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	result = repo.db.WithContext(ctx).
		Model(&model.OutgoingMentionModel{}).
		Where("uuid = ?", id).
		Updates(updates)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update outgoing mention status")
	}
	if result.RowsAffected == 0 {
		return repository.ErrMentionNotFound
	}

	return nil
}

// FindMentionByUUID retrieves a mention by UUID from either table.
func (repo *mentionRepository) FindMentionByUUID(ctx context.Context, id uuid.UUID) (*entity.Mention, error) {
	var inM model.IncomingMentionModel
	err := repo.db.WithContext(ctx).Where("uuid = ?", id).First(&inM).Error
	if err == nil {
		return toMentionDomain(&inM, entity.MentionIncoming)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "failed to find incoming mention by uuid")
	}

	var outM model.OutgoingMentionModel
	err = repo.db.WithContext(ctx).Where("uuid = ?", id).First(&outM).Error
	if err == nil {
		inShape := model.IncomingMentionModel(outM)

		return toMentionDomain(&inShape, entity.MentionOutgoing)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrMentionNotFound
	}

	return nil, errors.Wrap(err, "failed to find outgoing mention by uuid")
}

// FindVerifiedIncomingByTarget lists verified incoming mentions for a target
// URL, newest first.
func (repo *mentionRepository) FindVerifiedIncomingByTarget(ctx context.Context, target string) ([]*entity.Mention, error) {
	var rows []*model.IncomingMentionModel
	if err := repo.db.WithContext(ctx).
		Where("target = ? AND status = ?", target, string(entity.MentionVerified)).
		Order("last_modified_at DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list verified incoming mentions")
	}

	mentions := make([]*entity.Mention, 0, len(rows))
	for _, row := range rows {
		mention, err := toMentionDomain(row, entity.MentionIncoming)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, mention)
	}

	return mentions, nil
}

func (repo *mentionRepository) findIncomingBySourceTarget(ctx context.Context, source, target string) (*entity.Mention, error) {
	var row model.IncomingMentionModel
	if err := repo.db.WithContext(ctx).
		Where("source = ? AND target = ?", source, target).
		First(&row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to reload upserted incoming mention")
	}

	return toMentionDomain(&row, entity.MentionIncoming)
}

func (repo *mentionRepository) findOutgoingBySourceTarget(ctx context.Context, source, target string) (*entity.Mention, error) {
	var row model.OutgoingMentionModel
	if err := repo.db.WithContext(ctx).
		Where("source = ? AND target = ?", source, target).
		First(&row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to reload upserted outgoing mention")
	}
	inShape := model.IncomingMentionModel(row)

	return toMentionDomain(&inShape, entity.MentionOutgoing)
}

func marshalSnapshot(snapshot *entity.Document) (datatypes.JSON, error) {
	if snapshot == nil {
		return nil, nil
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal mention snapshot")
	}

	return raw, nil
}

// toMentionDomain maps a persistence model back to a pure domain entity.
func toMentionDomain(row *model.IncomingMentionModel, direction entity.MentionDirection) (*entity.Mention, error) {
	mention := &entity.Mention{
		UUID:           row.UUID,
		Direction:      direction,
		Source:         row.Source,
		Target:         row.Target,
		Status:         entity.MentionStatus(row.Status),
		Message:        row.Message,
		CreatedAt:      row.CreatedAt,
		LastModifiedAt: row.LastModifiedAt,
	}
	if row.Vouch != nil {
		mention.Vouch = *row.Vouch
	}
	if len(row.Snapshot) > 0 {
		var doc entity.Document
		if err := json.Unmarshal(row.Snapshot, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal mention snapshot")
		}
		mention.Snapshot = &doc
	}

	return mention, nil
}
