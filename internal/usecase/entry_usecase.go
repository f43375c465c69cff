// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"plume/internal/domain/entity"

	"github.com/google/uuid"
)

// EntryUsecase defines the interface for entry store operations.
type EntryUsecase interface {
	// CreateEntry stores a new entry built from a microformats2 document and
	// assigns its permanent UUID. The entry's location is derived from the
	// document's url property when present.
	CreateEntry(ctx context.Context, doc entity.Document) (*entity.Entry, error)

	// UpdateEntry overlays the given document onto the stored entry. The
	// UUID, creation time and unrecognized properties the update does not
	// touch are preserved.
	UpdateEntry(ctx context.Context, id uuid.UUID, doc entity.Document) (*entity.Entry, error)

	// DeleteEntry soft-deletes an entry, leaving a tombstone.
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	// UndeleteEntry restores a soft-deleted entry under its original UUID.
	UndeleteEntry(ctx context.Context, id uuid.UUID) error

	// GetEntry retrieves an entry by UUID, tombstones included. Callers are
	// expected to check Deleted and serve 410 for tombstones.
	GetEntry(ctx context.Context, id uuid.UUID) (*entity.Entry, error)

	// GetEntryByLocation retrieves a live entry by its canonical URL.
	GetEntryByLocation(ctx context.Context, location string) (*entity.Entry, error)

	// SearchEntries runs a full-text query over live entries.
	SearchEntries(ctx context.Context, query string, limit, offset int) ([]*entity.Entry, error)

	// GetThread assembles the reply tree rooted at an entry from verified
	// incoming mentions. The tree is a projection, recomputed per call.
	GetThread(ctx context.Context, id uuid.UUID) (*entity.ThreadNode, error)
}
