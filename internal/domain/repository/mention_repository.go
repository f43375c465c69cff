package repository

import (
	"context"

	"plume/internal/domain/entity"
	"plume/internal/errors"

	"github.com/google/uuid"
)

// ErrMentionNotFound is returned when a mention row is not found.
var ErrMentionNotFound = errors.New("mention not found")

// MentionRepository defines the interface for webmention persistence, both
// directions. (Source, target) is unique per direction: Upsert updates the
// existing row on conflict instead of inserting a duplicate.
type MentionRepository interface {
	// UpsertMention inserts the mention or, when the (source, target) pair
	// already exists for its direction, refreshes vouch, status, message
	// and the modification time. The stored UUID of an existing row wins;
	// the returned mention carries it.
	UpsertMention(ctx context.Context, mention *entity.Mention) (*entity.Mention, error)

	// UpdateMentionStatus transitions a mention's status, message and
	// optional captured snapshot.
	UpdateMentionStatus(ctx context.Context, id uuid.UUID, status entity.MentionStatus, message string, snapshot *entity.Document) error

	// FindMentionByUUID retrieves a mention by UUID, either direction.
	FindMentionByUUID(ctx context.Context, id uuid.UUID) (*entity.Mention, error)

	// FindVerifiedIncomingByTarget lists verified incoming mentions for a
	// target URL, newest first. Feeds the derived salmention projection.
	FindVerifiedIncomingByTarget(ctx context.Context, target string) ([]*entity.Mention, error)
}
