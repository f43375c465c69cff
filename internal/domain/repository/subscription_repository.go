package repository

import (
	"context"
	"time"

	"plume/internal/domain/entity"
	"plume/internal/errors"
)

// ErrSubscriptionNotFound is returned when a subscription is not found.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionRepository defines the interface for WebSub lease persistence.
type SubscriptionRepository interface {
	// UpsertSubscription creates or renews the lease for the
	// (callback, topic) pair.
	UpsertSubscription(ctx context.Context, sub *entity.Subscription) error

	// DeleteSubscription removes the lease for the (callback, topic) pair.
	DeleteSubscription(ctx context.Context, callback, topic string) error

	// FindActiveSubscriptionsByTopic lists leases for a topic that expire
	// after the given instant. Expired leases are retained for audit but
	// excluded here.
	FindActiveSubscriptionsByTopic(ctx context.Context, topic string, now time.Time) ([]*entity.Subscription, error)

	// TouchDelivery records a successful delivery to a subscriber.
	TouchDelivery(ctx context.Context, callback, topic string, at time.Time) error
}
