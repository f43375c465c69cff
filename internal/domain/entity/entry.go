package entity

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a published item in the store. The UUID is assigned once
// and never changes; the location is unique among non-deleted entries.
type Entry struct {
	UUID           uuid.UUID `json:"uuid"`
	Author         string    `json:"author"`   // URI of the author, normally the site owner.
	Location       string    `json:"location"` // Canonical URL, empty until published.
	Content        Document  `json:"content"`
	Deleted        bool      `json:"deleted"` // Soft delete; the row is kept for tombstones.
	CreatedAt      time.Time `json:"created_at"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}

// ThreadNode is one node of the derived salmention projection: an entry plus
// the verified replies pointing at it. It is recomputed from the mention
// tables on demand, never stored.
type ThreadNode struct {
	Entry    *Entry        `json:"entry"`
	Children []*ThreadNode `json:"children,omitempty"`
}
