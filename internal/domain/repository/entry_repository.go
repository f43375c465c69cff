// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"plume/internal/domain/entity"
	"plume/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for entry persistence.
var (
	// ErrEntryNotFound is returned when an entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrDuplicateLocation is returned when another live entry claims the location.
	ErrDuplicateLocation = errors.New("entry location already in use")
)

// EntryRepository defines the interface for entry-related database operations.
// The entry store is the only writer of entry rows; protocol subsystems read
// them by value.
type EntryRepository interface {
	// CreateEntry persists a new entry.
	CreateEntry(ctx context.Context, entry *entity.Entry) error

	// FindEntryByUUID retrieves an entry by UUID, including soft-deleted
	// rows so that callers can serve tombstones.
	FindEntryByUUID(ctx context.Context, id uuid.UUID) (*entity.Entry, error)

	// FindEntryByLocation retrieves a live (non-deleted) entry by its
	// canonical URL.
	FindEntryByLocation(ctx context.Context, location string) (*entity.Entry, error)

	// UpdateEntry persists content and timestamp changes. The UUID and
	// created timestamp are never touched.
	UpdateEntry(ctx context.Context, entry *entity.Entry) error

	// SetDeleted flips the soft-delete flag and bumps the modification time.
	SetDeleted(ctx context.Context, id uuid.UUID, deleted bool) error

	// SearchEntries runs a full-text query over live entry content.
	SearchEntries(ctx context.Context, needle string, limit, offset int) ([]*entity.Entry, error)

	// ListRecentEntries returns live entries ordered by last modification,
	// newest first. Used to build topic snapshots for WebSub delivery.
	ListRecentEntries(ctx context.Context, limit int) ([]*entity.Entry, error)
}
