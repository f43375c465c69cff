package entity

import (
	"time"

	"github.com/google/uuid"
)

// MentionStatus is the lifecycle state of a webmention, inbound or outbound.
type MentionStatus string

const (
	// MentionPending means the mention is recorded and awaiting verification
	// or delivery.
	MentionPending MentionStatus = "pending"
	// MentionVerified means the backlink was confirmed (inbound) or the
	// delivery was accepted (outbound).
	MentionVerified MentionStatus = "verified"
	// MentionRejected is a terminal content judgment: the source does not
	// link to the target. Only a resubmission re-opens it.
	MentionRejected MentionStatus = "rejected"
	// MentionError records a terminal transport failure after bounded retries.
	MentionError MentionStatus = "error"
	// MentionNoEndpoint marks an outbound target that does not advertise a
	// webmention endpoint. Recorded for visibility, never retried.
	MentionNoEndpoint MentionStatus = "no_endpoint"
	// MentionModeration holds an inbound mention that verified but is from
	// an untrusted domain without a valid vouch.
	MentionModeration MentionStatus = "pending_moderation"
)

// MentionDirection distinguishes the two mention tables.
type MentionDirection string

const (
	MentionIncoming MentionDirection = "incoming"
	MentionOutgoing MentionDirection = "outgoing"
)

// Mention is a webmention row. (Source, Target) is unique per direction;
// resubmission updates the existing row.
type Mention struct {
	UUID      uuid.UUID        `json:"uuid"`
	Direction MentionDirection `json:"direction"`
	Source    string           `json:"source"`
	Target    string           `json:"target"`
	Vouch     string           `json:"vouch,omitempty"`
	Status    MentionStatus    `json:"status"`
	Message   string           `json:"message,omitempty"`
	// Snapshot holds the h-entry captured from the source at verification
	// time, when one was found.
	Snapshot       *Document `json:"snapshot,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}
