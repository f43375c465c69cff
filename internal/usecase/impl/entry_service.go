// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"plume/config"
	deliverycontext "plume/internal/delivery/context"
	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/domain/service"
	"plume/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const maxThreadDepth = 6

// entryService implements the EntryUsecase interface.
type entryService struct {
	txManager repository.TransactionManager
	cfg       *config.Config
	logger    *slog.Logger
	listeners []service.PublishListener
}

// NewEntryService is the constructor for entryService. Listeners receive
// change notifications after each successful mutation.
func NewEntryService(
	txManager repository.TransactionManager,
	cfg *config.Config,
	logger *slog.Logger,
	listeners []service.PublishListener,
) usecase.EntryUsecase {
	return &entryService{
		txManager: txManager,
		cfg:       cfg,
		logger:    logger,
		listeners: listeners,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *entryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateEntry stores a new entry and assigns its permanent UUID.
func (srv *entryService) CreateEntry(ctx context.Context, doc entity.Document) (*entity.Entry, error) {
	if !doc.IsEntry() {
		return nil, domainerrors.ErrInvalidRequest.WrapMessage("document is not an h-entry")
	}

	now := time.Now().UTC()
	id := uuid.New()

	location := srv.cfg.Site.BaseURL + "/entries/" + id.String()
	if len(doc.Properties.URL) > 0 && doc.Properties.URL[0] != "" {
		location = doc.Properties.URL[0]
	}
	if !strings.HasPrefix(location, srv.cfg.Site.BaseURL) {
		return nil, domainerrors.ErrInvalidRequest.WrapMessage("entry location must live on this site")
	}

	// The document carries its own identity so feeds stay self-describing.
	doc.Properties.UID = []string{id.String()}
	doc.Properties.URL = []string{location}
	if len(doc.Properties.Published) == 0 {
		doc.Properties.Published = []string{now.Format(time.RFC3339)}
	}

	entry := &entity.Entry{
		UUID:           id,
		Author:         srv.cfg.Site.BaseURL,
		Location:       location,
		Content:        doc,
		CreatedAt:      now,
		LastModifiedAt: now,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewEntryRepository().CreateEntry(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateLocation) {
			return nil, domainerrors.ErrLocationConflict.WrapMessage(location)
		}
		srv.log(ctx).Error("Failed to create entry", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create entry")
	}

	srv.log(ctx).Info("Entry created", slog.String("uuid", id.String()), slog.String("location", location))
	srv.notify(ctx, service.EntryEvent{NewEntry: entry})

	return entry, nil
}

// UpdateEntry overlays the document onto the stored entry, preserving
// identity and anything the update leaves unspecified.
func (srv *entryService) UpdateEntry(ctx context.Context, id uuid.UUID, doc entity.Document) (*entity.Entry, error) {
	var oldEntry, newEntry *entity.Entry

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		entryRepo := repoFactory.NewEntryRepository()

		stored, err := entryRepo.FindEntryByUUID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return domainerrors.ErrEntryNotFound.WrapMessage(id.String())
			}

			return errors.Wrap(err, "failed to find entry")
		}
		if stored.Deleted {
			return domainerrors.ErrEntryGone.WrapMessage(id.String())
		}

		oldCopy := *stored
		oldEntry = &oldCopy

		now := time.Now().UTC()
		stored.Content.Properties.Merge(doc.Properties)
		if len(doc.Type) > 0 {
			stored.Content.Type = doc.Type
		}
		// Identity properties always reflect the stored row.
		stored.Content.Properties.UID = []string{stored.UUID.String()}
		stored.Content.Properties.URL = []string{stored.Location}
		stored.Content.Properties.Updated = []string{now.Format(time.RFC3339)}
		stored.LastModifiedAt = now

		if err := entryRepo.UpdateEntry(ctx, stored); err != nil {
			return errors.Wrap(err, "failed to update entry")
		}
		newEntry = stored

		return nil
	})
	if err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to update entry", slog.Any("error", err), slog.String("uuid", id.String()))

		return nil, errors.Wrap(err, "failed to update entry")
	}

	srv.log(ctx).Info("Entry updated", slog.String("uuid", id.String()))
	srv.notify(ctx, service.EntryEvent{NewEntry: newEntry, OldEntry: oldEntry})

	return newEntry, nil
}

// DeleteEntry soft-deletes an entry, leaving a tombstone that keeps the UUID
// reserved and frees the location for reuse.
func (srv *entryService) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	var oldEntry *entity.Entry

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		entryRepo := repoFactory.NewEntryRepository()

		stored, err := entryRepo.FindEntryByUUID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return domainerrors.ErrEntryNotFound.WrapMessage(id.String())
			}

			return errors.Wrap(err, "failed to find entry")
		}
		if stored.Deleted {
			// Deleting a tombstone is a no-op.
			return nil
		}
		oldEntry = stored

		return entryRepo.SetDeleted(ctx, id, true)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to delete entry", slog.Any("error", err), slog.String("uuid", id.String()))

		return err
	}

	if oldEntry != nil {
		srv.log(ctx).Info("Entry deleted", slog.String("uuid", id.String()))
		srv.notify(ctx, service.EntryEvent{OldEntry: oldEntry})
	}

	return nil
}

// UndeleteEntry restores a tombstoned entry under its original UUID.
func (srv *entryService) UndeleteEntry(ctx context.Context, id uuid.UUID) error {
	var restored *entity.Entry

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		entryRepo := repoFactory.NewEntryRepository()

		stored, err := entryRepo.FindEntryByUUID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return domainerrors.ErrEntryNotFound.WrapMessage(id.String())
			}

			return errors.Wrap(err, "failed to find entry")
		}
		if !stored.Deleted {
			return nil
		}

		if err := entryRepo.SetDeleted(ctx, id, false); err != nil {
			if errors.Is(err, repository.ErrDuplicateLocation) {
				return domainerrors.ErrLocationConflict.WrapMessage(stored.Location)
			}

			return errors.Wrap(err, "failed to restore entry")
		}
		stored.Deleted = false
		restored = stored

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to restore entry", slog.Any("error", err), slog.String("uuid", id.String()))

		return err
	}

	if restored != nil {
		srv.log(ctx).Info("Entry restored", slog.String("uuid", id.String()))
		srv.notify(ctx, service.EntryEvent{NewEntry: restored})
	}

	return nil
}

// GetEntry retrieves an entry by UUID, tombstones included.
func (srv *entryService) GetEntry(ctx context.Context, id uuid.UUID) (*entity.Entry, error) {
	var entry *entity.Entry

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewEntryRepository().FindEntryByUUID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return domainerrors.ErrEntryNotFound.WrapMessage(id.String())
			}

			return errors.Wrap(err, "failed to find entry")
		}
		entry = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// GetEntryByLocation retrieves a live entry by its canonical URL.
func (srv *entryService) GetEntryByLocation(ctx context.Context, location string) (*entity.Entry, error) {
	var entry *entity.Entry

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewEntryRepository().FindEntryByLocation(ctx, location)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return domainerrors.ErrEntryNotFound.WrapMessage(location)
			}

			return errors.Wrap(err, "failed to find entry by location")
		}
		entry = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// SearchEntries runs a full-text query over live entries.
func (srv *entryService) SearchEntries(ctx context.Context, query string, limit, offset int) ([]*entity.Entry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domainerrors.ErrInvalidRequest.WrapMessage("empty search query")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var entries []*entity.Entry
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewEntryRepository().SearchEntries(ctx, query, limit, offset)
		if err != nil {
			return errors.Wrap(err, "failed to search entries")
		}
		entries = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to search entries", slog.Any("error", err))

		return nil, err
	}

	return entries, nil
}

// GetThread assembles the reply tree rooted at an entry from verified
// incoming mentions. External replies appear as synthesized entries built
// from the snapshot captured at verification time.
func (srv *entryService) GetThread(ctx context.Context, id uuid.UUID) (*entity.ThreadNode, error) {
	var root *entity.ThreadNode

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		entryRepo := repoFactory.NewEntryRepository()
		mentionRepo := repoFactory.NewMentionRepository()

		entry, err := entryRepo.FindEntryByUUID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return domainerrors.ErrEntryNotFound.WrapMessage(id.String())
			}

			return errors.Wrap(err, "failed to find entry")
		}
		if entry.Deleted {
			return domainerrors.ErrEntryGone.WrapMessage(id.String())
		}

		visited := map[string]struct{}{}
		root, err = srv.buildThread(ctx, entryRepo, mentionRepo, entry, visited, maxThreadDepth)

		return err
	})
	if err != nil {
		return nil, err
	}

	return root, nil
}

func (srv *entryService) buildThread(
	ctx context.Context,
	entryRepo repository.EntryRepository,
	mentionRepo repository.MentionRepository,
	entry *entity.Entry,
	visited map[string]struct{},
	depth int,
) (*entity.ThreadNode, error) {
	node := &entity.ThreadNode{Entry: entry}
	if depth == 0 || entry.Location == "" {
		return node, nil
	}
	if _, seen := visited[entry.Location]; seen {
		return node, nil
	}
	visited[entry.Location] = struct{}{}

	mentions, err := mentionRepo.FindVerifiedIncomingByTarget(ctx, entry.Location)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load replies")
	}

	for _, mention := range mentions {
		// A reply hosted here joins the thread as a full entry and recurses;
		// an external one contributes its verification snapshot.
		child, err := entryRepo.FindEntryByLocation(ctx, mention.Source)
		if err == nil {
			childNode, err := srv.buildThread(ctx, entryRepo, mentionRepo, child, visited, depth-1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, childNode)

			continue
		}
		if !errors.Is(err, repository.ErrEntryNotFound) {
			return nil, errors.Wrap(err, "failed to resolve reply source")
		}

		node.Children = append(node.Children, &entity.ThreadNode{
			Entry: synthesizeReply(mention),
		})
	}

	return node, nil
}

// synthesizeReply builds a read-only entry view for an external reply.
func synthesizeReply(mention *entity.Mention) *entity.Entry {
	content := entity.Document{
		Type: []string{"h-entry"},
		Properties: entity.Properties{
			URL:       []string{mention.Source},
			InReplyTo: []string{mention.Target},
		},
	}
	if mention.Snapshot != nil {
		content = *mention.Snapshot
	}

	return &entity.Entry{
		UUID:           mention.UUID,
		Author:         mention.Source,
		Location:       mention.Source,
		Content:        content,
		CreatedAt:      mention.CreatedAt,
		LastModifiedAt: mention.LastModifiedAt,
	}
}

// notify dispatches the event to every registered listener. Listeners run
// detached from the request: their work must survive the response and their
// failures never surface to the caller.
func (srv *entryService) notify(ctx context.Context, event service.EntryEvent) {
	logger := srv.log(ctx)
	for _, listener := range srv.listeners {
		go func(l service.PublishListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Publish listener panicked", slog.Any("panic", r))
				}
			}()
			l.EntryChanged(deliverycontext.WithLogger(context.Background(), logger), event)
		}(listener)
	}
}
