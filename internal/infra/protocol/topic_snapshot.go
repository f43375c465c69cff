package protocol

import (
	"context"
	"encoding/json"

	"plume/config"
	"plume/internal/domain/entity"
	"plume/internal/domain/repository"
	"plume/internal/domain/service"
	"plume/internal/errors"
)

const snapshotEntryLimit = 20

const mf2ContentType = "application/mf2+json"

// feedTopicSource implements the domain TopicSource interface with a
// microformats2 JSON snapshot of the most recent live entries.
type feedTopicSource struct {
	cfg     *config.Config
	entries repository.EntryRepository
}

// NewTopicSource is the constructor for feedTopicSource.
func NewTopicSource(cfg *config.Config, entries repository.EntryRepository) service.TopicSource {
	return &feedTopicSource{
		cfg:     cfg,
		entries: entries,
	}
}

// Snapshot renders the current topic representation: an h-feed document
// whose children are the recent live entries, newest first.
func (s *feedTopicSource) Snapshot(ctx context.Context, topic string) ([]byte, string, error) {
	recent, err := s.entries.ListRecentEntries(ctx, snapshotEntryLimit)
	if err != nil {
		return nil, "", err
	}

	children := make([]entity.Document, 0, len(recent))
	for _, entry := range recent {
		children = append(children, entry.Content)
	}

	feed := entity.Document{
		Type: []string{"h-feed"},
		Properties: entity.Properties{
			Name: []string{s.cfg.Site.Name},
			URL:  []string{topic},
		},
		Children: children,
	}

	payload, err := json.Marshal(&feed)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to marshal topic snapshot")
	}

	return payload, mf2ContentType, nil
}
