package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
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
	"golang.org/x/sync/errgroup"
)

const outboundConcurrency = 4

// mentionService implements the MentionUsecase interface.
type mentionService struct {
	txManager   repository.TransactionManager
	client      service.MentionClient
	trustedRepo repository.TrustedDomainRepository
	cfg         *config.Config
	logger      *slog.Logger

	// async runs the verification leg after ReceiveMention returns. Tests
	// replace it to run synchronously.
	async func(fn func())
}

// NewMentionService is the constructor for mentionService.
func NewMentionService(
	txManager repository.TransactionManager,
	client service.MentionClient,
	trustedRepo repository.TrustedDomainRepository,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.MentionUsecase {
	return &mentionService{
		txManager:   txManager,
		client:      client,
		trustedRepo: trustedRepo,
		cfg:         cfg,
		logger:      logger,
		async:       func(fn func()) { go fn() },
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *mentionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ReceiveMention accepts an inbound webmention after syntactic checks and
// schedules its verification. Resubmissions re-open the existing
// (source, target) row.
func (srv *mentionService) ReceiveMention(ctx context.Context, source, target, vouch string) (*entity.Mention, error) {
	if err := validateMentionURLs(source, target); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(target, srv.cfg.Site.BaseURL) {
		return nil, domainerrors.ErrInvalidRequest.WrapMessage("target does not live on this site")
	}
	if srv.cfg.WebMention.RequireVouch && vouch == "" {
		return nil, domainerrors.ErrVouchRequired.WrapMessage("this site requires a vouch parameter")
	}

	now := time.Now().UTC()
	mention := &entity.Mention{
		UUID:           uuid.New(),
		Direction:      entity.MentionIncoming,
		Source:         source,
		Target:         target,
		Vouch:          vouch,
		Status:         entity.MentionPending,
		CreatedAt:      now,
		LastModifiedAt: now,
	}

	var stored *entity.Mention
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// The target must be a live entry location before anything is
		// stored or fetched.
		if _, err := repoFactory.NewEntryRepository().FindEntryByLocation(ctx, target); err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return domainerrors.ErrInvalidRequest.WrapMessage("target is not a live entry on this site")
			}

			return errors.Wrap(err, "failed to resolve mention target")
		}

		upserted, err := repoFactory.NewMentionRepository().UpsertMention(ctx, mention)
		if err != nil {
			return err
		}
		stored = upserted

		return nil
	})
	if err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to store mention", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store mention")
	}

	srv.log(ctx).Info("Webmention received",
		slog.String("uuid", stored.UUID.String()),
		slog.String("source", source),
		slog.String("target", target),
	)

	logger := srv.log(ctx)
	srv.async(func() {
		verifyCtx := deliverycontext.WithLogger(context.Background(), logger)
		if err := srv.VerifyMention(verifyCtx, stored.UUID); err != nil {
			logger.Warn("Webmention verification failed",
				slog.String("uuid", stored.UUID.String()),
				slog.Any("error", err),
			)
		}
	})

	return stored, nil
}

// VerifyMention runs the verification leg: fetch the source, check the
// backlink, apply trust and vouch policy, then record the verdict.
func (srv *mentionService) VerifyMention(ctx context.Context, id uuid.UUID) error {
	mention, err := srv.MentionStatus(ctx, id)
	if err != nil {
		return err
	}

	status, message, snapshot := srv.judge(ctx, mention)

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewMentionRepository().UpdateMentionStatus(ctx, id, status, message, snapshot)
	})
	if err != nil {
		return errors.Wrap(err, "failed to record verification verdict")
	}

	srv.log(ctx).Info("Webmention verified",
		slog.String("uuid", id.String()),
		slog.String("status", string(status)),
	)

	if status == entity.MentionVerified {
		srv.salmention(ctx, mention.Target)
	}

	return nil
}

// judge decides the verdict for an inbound mention.
func (srv *mentionService) judge(ctx context.Context, mention *entity.Mention) (entity.MentionStatus, string, *entity.Document) {
	trusted := srv.isTrusted(ctx, mention.Source)

	page, err := srv.client.FetchSource(ctx, mention.Source)
	if err != nil {
		return entity.MentionError, err.Error(), nil
	}

	if !srv.client.LinksBack(page, mention.Target) {
		if trusted && srv.cfg.WebMention.TrustedSkipsBacklink {
			return entity.MentionVerified, "backlink waived for trusted domain", nil
		}

		return entity.MentionRejected, "source does not link to target", nil
	}

	if !trusted && mention.Vouch != "" && !srv.vouchValid(ctx, mention) {
		return entity.MentionModeration, "vouch could not be validated", snapshotFromPage(page)
	}
	if !trusted && srv.cfg.WebMention.RequireVouch && mention.Vouch == "" {
		return entity.MentionModeration, "untrusted source without vouch", snapshotFromPage(page)
	}

	return entity.MentionVerified, "", snapshotFromPage(page)
}

// vouchValid checks the vouch extension: the vouch page must live on a
// trusted domain and link to the mention source.
func (srv *mentionService) vouchValid(ctx context.Context, mention *entity.Mention) bool {
	if !srv.isTrusted(ctx, mention.Vouch) {
		return false
	}

	vouchPage, err := srv.client.FetchSource(ctx, mention.Vouch)
	if err != nil {
		return false
	}

	return srv.client.LinksBack(vouchPage, mention.Source)
}

func (srv *mentionService) isTrusted(ctx context.Context, rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}

	trusted, err := srv.trustedRepo.IsTrustedDomain(ctx, host)
	if err != nil {
		srv.log(ctx).Warn("Trusted domain lookup failed", slog.String("domain", host), slog.Any("error", err))

		return false
	}

	return trusted
}

// MentionStatus reports the current state of a mention.
func (srv *mentionService) MentionStatus(ctx context.Context, id uuid.UUID) (*entity.Mention, error) {
	var mention *entity.Mention

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewMentionRepository().FindMentionByUUID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrMentionNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("mention not found")
			}

			return errors.Wrap(err, "failed to find mention")
		}
		mention = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return mention, nil
}

// SendMentionsForEntry discovers targets linked from the entry and delivers
// a webmention to each, with per-target isolation.
func (srv *mentionService) SendMentionsForEntry(ctx context.Context, entry *entity.Entry) error {
	if entry == nil || entry.Location == "" {
		return nil
	}

	return srv.sendMentions(ctx, entry.Location, srv.targetsOf(entry))
}

// EntryChanged implements service.PublishListener: outbound mentions go to
// the union of old and new targets, so removed links still learn about the
// change (and deleted entries notify their former targets).
func (srv *mentionService) EntryChanged(ctx context.Context, event service.EntryEvent) {
	var source string
	targets := map[string]struct{}{}

	if event.OldEntry != nil {
		source = event.OldEntry.Location
		for _, target := range srv.targetsOf(event.OldEntry) {
			targets[target] = struct{}{}
		}
	}
	if event.NewEntry != nil {
		source = event.NewEntry.Location
		for _, target := range srv.targetsOf(event.NewEntry) {
			targets[target] = struct{}{}
		}
	}
	if source == "" || len(targets) == 0 {
		return
	}

	flat := make([]string, 0, len(targets))
	for target := range targets {
		flat = append(flat, target)
	}

	if err := srv.sendMentions(ctx, source, flat); err != nil {
		srv.log(ctx).Warn("Outbound mention fan-out failed", slog.String("source", source), slog.Any("error", err))
	}
}

// targetsOf collects the outbound mention targets of an entry: in-reply-to
// plus every link in the rendered content.
func (srv *mentionService) targetsOf(entry *entity.Entry) []string {
	seen := map[string]struct{}{}
	var targets []string
	add := func(target string) {
		if target == "" || target == entry.Location {
			return
		}
		if _, ok := seen[target]; ok {
			return
		}
		seen[target] = struct{}{}
		targets = append(targets, target)
	}

	for _, replyTo := range entry.Content.Properties.InReplyTo {
		add(replyTo)
	}
	for _, content := range entry.Content.Properties.Content {
		if content.HTML == "" {
			continue
		}
		for _, link := range srv.client.ExtractLinks(entry.Location, content.HTML) {
			add(link)
		}
	}

	return targets
}

func (srv *mentionService) sendMentions(ctx context.Context, source string, targets []string) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(outboundConcurrency)

	for _, target := range targets {
		group.Go(func() error {
			srv.sendOne(groupCtx, source, target)

			// Per-target isolation: one dead target never aborts the rest.
			return nil
		})
	}

	return group.Wait()
}

// sendOne delivers a single outbound mention and records its outcome.
func (srv *mentionService) sendOne(ctx context.Context, source, target string) {
	now := time.Now().UTC()
	mention := &entity.Mention{
		UUID:           uuid.New(),
		Direction:      entity.MentionOutgoing,
		Source:         source,
		Target:         target,
		Status:         entity.MentionPending,
		CreatedAt:      now,
		LastModifiedAt: now,
	}

	var stored *entity.Mention
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		upserted, err := repoFactory.NewMentionRepository().UpsertMention(ctx, mention)
		if err != nil {
			return err
		}
		stored = upserted

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to record outbound mention", slog.String("target", target), slog.Any("error", err))

		return
	}

	// A domain we link to may vouch for replies later.
	if host := hostOf(target); host != "" {
		if err := srv.trustedRepo.AddTrustedDomain(ctx, host); err != nil {
			srv.log(ctx).Warn("Failed to allow-list target domain", slog.String("domain", host), slog.Any("error", err))
		}
	}

	status := entity.MentionVerified
	message := ""

	endpoint, err := srv.client.DiscoverEndpoint(ctx, target)
	switch {
	case err != nil:
		status, message = entity.MentionError, err.Error()
	case endpoint == "":
		// The target does not take webmentions. Recorded, never retried.
		status, message = entity.MentionNoEndpoint, "target advertises no webmention endpoint"
	default:
		if err := srv.client.Deliver(ctx, endpoint, source, target, ""); err != nil {
			status, message = entity.MentionError, err.Error()
		}
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewMentionRepository().UpdateMentionStatus(ctx, stored.UUID, status, message, nil)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to record outbound outcome", slog.String("target", target), slog.Any("error", err))

		return
	}

	srv.log(ctx).Info("Outbound mention processed",
		slog.String("target", target),
		slog.String("status", string(status)),
	)
}

// salmention re-announces an entry when a new verified reply lands on it, so
// everyone already mentioned in the thread hears about the reply.
func (srv *mentionService) salmention(ctx context.Context, target string) {
	var entry *entity.Entry

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewEntryRepository().FindEntryByLocation(ctx, target)
		if err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return nil
			}

			return err
		}
		entry = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Salmention lookup failed", slog.String("target", target), slog.Any("error", err))

		return
	}
	if entry == nil {
		return
	}

	if err := srv.SendMentionsForEntry(ctx, entry); err != nil {
		srv.log(ctx).Warn("Salmention fan-out failed", slog.String("target", target), slog.Any("error", err))
	}
}

// snapshotFromPage captures a minimal h-entry view of the source page for
// thread rendering.
func snapshotFromPage(page *service.SourcePage) *entity.Document {
	if page == nil {
		return nil
	}

	doc := &entity.Document{
		Type: []string{"h-entry"},
		Properties: entity.Properties{
			URL: []string{page.URL},
		},
	}
	if strings.Contains(page.ContentType, "json") {
		var parsed entity.Document
		if err := json.Unmarshal(page.Body, &parsed); err == nil && parsed.IsEntry() {
			return &parsed
		}
	}

	return doc
}

func validateMentionURLs(source, target string) error {
	if source == target {
		return domainerrors.ErrInvalidRequest.WrapMessage("source and target must differ")
	}
	for _, raw := range []string{source, target} {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return domainerrors.ErrInvalidRequest.WrapMessage("source and target must be absolute http(s) URLs")
		}
	}

	return nil
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return parsed.Hostname()
}
