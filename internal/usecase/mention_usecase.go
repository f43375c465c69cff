package usecase

import (
	"context"

	"plume/internal/domain/entity"
	"plume/internal/domain/service"

	"github.com/google/uuid"
)

// MentionUsecase defines the interface for the webmention pipeline, both
// directions. It also listens for entry-store changes to send outbound
// mentions; registration happens at wiring time.
type MentionUsecase interface {
	service.PublishListener

	// ReceiveMention accepts an inbound webmention after cheap syntactic
	// checks: source and target must be distinct URLs and target must live
	// on this site. The stored mention starts out pending; verification runs
	// asynchronously. Resubmitting a (source, target) pair re-verifies the
	// existing row instead of creating a new one.
	ReceiveMention(ctx context.Context, source, target, vouch string) (*entity.Mention, error)

	// VerifyMention runs the verification leg for a stored mention: fetch
	// the source, check the backlink, apply trust and vouch policy. It is
	// called by the async worker and exposed for reprocessing.
	VerifyMention(ctx context.Context, id uuid.UUID) error

	// MentionStatus reports the current state of a mention.
	MentionStatus(ctx context.Context, id uuid.UUID) (*entity.Mention, error)

	// SendMentionsForEntry discovers targets linked from the entry content
	// and delivers a webmention to each, recording per-target outcomes.
	// Targets without an endpoint are recorded and never retried.
	SendMentionsForEntry(ctx context.Context, entry *entity.Entry) error
}
