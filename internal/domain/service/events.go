package service

import (
	"context"

	"plume/internal/domain/entity"
)

// EntryEvent describes a change to the entry store. OldEntry is nil on
// create; NewEntry is nil on delete.
type EntryEvent struct {
	NewEntry *entity.Entry
	OldEntry *entity.Entry
}

// PublishListener receives entry-store change notifications. Listeners run
// asynchronously; their failures are logged, never surfaced to the
// triggering publish.
type PublishListener interface {
	EntryChanged(ctx context.Context, event EntryEvent)
}
