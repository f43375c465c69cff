package impl

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"time"

	"plume/config"
	deliverycontext "plume/internal/delivery/context"
	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/domain/service"
	"plume/internal/usecase"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	hubModeSubscribe   = "subscribe"
	hubModeUnsubscribe = "unsubscribe"

	fanOutConcurrency = 8
	challengeBytes    = 24
)

// hubService implements the HubUsecase interface.
type hubService struct {
	txManager repository.TransactionManager
	client    service.HubClient
	topics    service.TopicSource
	cfg       *config.Config
	logger    *slog.Logger

	// async runs the verification handshake after HandleRequest returns.
	// Tests replace it to run synchronously.
	async func(fn func())
}

// NewHubService is the constructor for hubService.
func NewHubService(
	txManager repository.TransactionManager,
	client service.HubClient,
	topics service.TopicSource,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.HubUsecase {
	return &hubService{
		txManager: txManager,
		client:    client,
		topics:    topics,
		cfg:       cfg,
		logger:    logger,
		async:     func(fn func()) { go fn() },
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *hubService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// topicURL is the only topic this hub serves: the site feed.
func (srv *hubService) topicURL() string {
	return srv.cfg.Site.BaseURL + srv.cfg.Site.FeedPath
}

// HandleRequest validates a subscriber request and launches the verification
// handshake. Nothing is persisted until the subscriber proves intent by
// echoing the challenge.
func (srv *hubService) HandleRequest(ctx context.Context, req usecase.HubRequest) error {
	if req.Topic != srv.topicURL() {
		return domainerrors.ErrInvalidTopic.WrapMessage("unknown topic: " + req.Topic)
	}
	if req.Mode != hubModeSubscribe && req.Mode != hubModeUnsubscribe {
		return domainerrors.ErrInvalidRequest.WrapMessage("unknown hub.mode: " + req.Mode)
	}

	lease := srv.clampLease(req.LeaseSeconds)

	logger := srv.log(ctx)
	srv.async(func() {
		verifyCtx := deliverycontext.WithLogger(context.Background(), logger)
		srv.verifyAndApply(verifyCtx, req, lease)
	})

	return nil
}

// clampLease applies the default and maximum lease bounds.
func (srv *hubService) clampLease(requested int) time.Duration {
	lease := time.Duration(requested) * time.Second
	if lease <= 0 {
		lease = srv.cfg.WebSub.DefaultLease
	}
	if lease > srv.cfg.WebSub.MaxLease {
		lease = srv.cfg.WebSub.MaxLease
	}

	return lease
}

func (srv *hubService) verifyAndApply(ctx context.Context, req usecase.HubRequest, lease time.Duration) {
	challenge, err := newChallenge()
	if err != nil {
		srv.log(ctx).Error("Failed to mint challenge", slog.Any("error", err))

		return
	}

	leaseSeconds := 0
	if req.Mode == hubModeSubscribe {
		leaseSeconds = int(lease / time.Second)
	}

	if err := srv.client.VerifyIntent(ctx, req.Callback, req.Mode, req.Topic, challenge, leaseSeconds); err != nil {
		srv.log(ctx).Info("Subscriber failed verification of intent",
			slog.String("callback", req.Callback),
			slog.String("mode", req.Mode),
			slog.Any("error", err),
		)

		return
	}

	now := time.Now().UTC()
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		subRepo := repoFactory.NewSubscriptionRepository()

		if req.Mode == hubModeUnsubscribe {
			if err := subRepo.DeleteSubscription(ctx, req.Callback, req.Topic); err != nil {
				if errors.Is(err, repository.ErrSubscriptionNotFound) {
					return nil
				}

				return err
			}

			return nil
		}

		return subRepo.UpsertSubscription(ctx, &entity.Subscription{
			Callback:       req.Callback,
			Topic:          req.Topic,
			Secret:         req.Secret,
			ExpiresAt:      now.Add(lease),
			LastDeliveryAt: now,
			CreatedAt:      now,
		})
	})
	if err != nil {
		srv.log(ctx).Error("Failed to apply subscription change",
			slog.String("callback", req.Callback),
			slog.Any("error", err),
		)

		return
	}

	srv.log(ctx).Info("Subscription change applied",
		slog.String("callback", req.Callback),
		slog.String("mode", req.Mode),
		slog.Duration("lease", lease),
	)
}

// Distribute delivers the current topic payload to every active subscriber.
func (srv *hubService) Distribute(ctx context.Context, topic string) error {
	if topic != srv.topicURL() {
		return domainerrors.ErrInvalidTopic.WrapMessage("unknown topic: " + topic)
	}

	payload, contentType, err := srv.topics.Snapshot(ctx, topic)
	if err != nil {
		return errors.Wrap(err, "failed to snapshot topic")
	}

	now := time.Now().UTC()
	var subs []*entity.Subscription
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewSubscriptionRepository().FindActiveSubscriptionsByTopic(ctx, topic, now)
		if err != nil {
			return err
		}
		subs = found

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to list subscribers")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fanOutConcurrency)

	for _, sub := range subs {
		if !sub.Active(now) {
			continue
		}
		group.Go(func() error {
			srv.deliverOne(groupCtx, sub, payload, contentType)

			// One failing callback neither blocks nor aborts the others.
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return errors.Wrap(err, "fan-out interrupted")
	}

	srv.log(ctx).Info("Topic distributed", slog.String("topic", topic), slog.Int("subscribers", len(subs)))

	return nil
}

func (srv *hubService) deliverOne(ctx context.Context, sub *entity.Subscription, payload []byte, contentType string) {
	if err := srv.client.Deliver(ctx, sub.Callback, sub.Topic, payload, contentType, sub.Secret); err != nil {
		// last_delivery_at only moves on success.
		srv.log(ctx).Warn("Subscriber delivery failed",
			slog.String("callback", sub.Callback),
			slog.Any("error", err),
		)

		return
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewSubscriptionRepository().TouchDelivery(ctx, sub.Callback, sub.Topic, time.Now().UTC())
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to record delivery",
			slog.String("callback", sub.Callback),
			slog.Any("error", err),
		)
	}
}

// EntryChanged implements service.PublishListener: any entry change makes
// the feed topic stale, so subscribers get a fresh snapshot.
func (srv *hubService) EntryChanged(ctx context.Context, _ service.EntryEvent) {
	if err := srv.Distribute(ctx, srv.topicURL()); err != nil {
		srv.log(ctx).Warn("Feed distribution failed", slog.Any("error", err))
	}
}

func newChallenge() (string, error) {
	buf := make([]byte, challengeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
