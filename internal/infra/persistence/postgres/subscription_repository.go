package postgres

import (
	"context"
	"time"

	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the domain.SubscriptionRepository
// interface using GORM.
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository is the constructor for subscriptionRepository.
func NewSubscriptionRepository(db *gorm.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// UpsertSubscription creates or renews the lease for the (callback, topic)
// pair. Renewal refreshes the secret and the expiry; the original creation
// time and delivery bookkeeping survive.
func (repo *subscriptionRepository) UpsertSubscription(ctx context.Context, sub *entity.Subscription) error {
	subM := fromSubscriptionDomain(sub)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "callback"}, {Name: "topic"}},
			DoUpdates: clause.Assignments(map[string]any{
				"secret":     subM.Secret,
				"expires_at": subM.ExpiresAt,
			}),
		}).
		Create(subM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert subscription")
	}

	return nil
}

// DeleteSubscription removes the lease for the (callback, topic) pair.
func (repo *subscriptionRepository) DeleteSubscription(ctx context.Context, callback, topic string) error {
	result := repo.db.WithContext(ctx).
		Where("callback = ? AND topic = ?", callback, topic).
		Delete(&model.SubscriptionModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete subscription")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSubscriptionNotFound
	}

	return nil
}

// FindActiveSubscriptionsByTopic lists unexpired leases for a topic.
func (repo *subscriptionRepository) FindActiveSubscriptionsByTopic(ctx context.Context, topic string, now time.Time) ([]*entity.Subscription, error) {
	var subMs []*model.SubscriptionModel
	if err := repo.db.WithContext(ctx).
		Where("topic = ? AND expires_at > ?", topic, now).
		Order("created_at ASC").
		Find(&subMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list active subscriptions")
	}

	subs := make([]*entity.Subscription, 0, len(subMs))
	for _, subM := range subMs {
		subs = append(subs, toSubscriptionDomain(subM))
	}

	return subs, nil
}

// TouchDelivery records a successful delivery to a subscriber. Failed
// deliveries deliberately leave the timestamp alone.
func (repo *subscriptionRepository) TouchDelivery(ctx context.Context, callback, topic string, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SubscriptionModel{}).
		Where("callback = ? AND topic = ?", callback, topic).
		Update("last_delivery_at", at)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to record delivery")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSubscriptionNotFound
	}

	return nil
}

// fromSubscriptionDomain maps a pure domain entity to a GORM persistence model.
func fromSubscriptionDomain(sub *entity.Subscription) *model.SubscriptionModel {
	var secret *string
	if sub.Secret != "" {
		secret = &sub.Secret
	}

	return &model.SubscriptionModel{
		Callback:       sub.Callback,
		Topic:          sub.Topic,
		Secret:         secret,
		ExpiresAt:      sub.ExpiresAt,
		LastDeliveryAt: sub.LastDeliveryAt,
		CreatedAt:      sub.CreatedAt,
	}
}

// toSubscriptionDomain maps a persistence model back to a pure domain entity.
func toSubscriptionDomain(subM *model.SubscriptionModel) *entity.Subscription {
	sub := &entity.Subscription{
		Callback:       subM.Callback,
		Topic:          subM.Topic,
		ExpiresAt:      subM.ExpiresAt,
		LastDeliveryAt: subM.LastDeliveryAt,
		CreatedAt:      subM.CreatedAt,
	}
	if subM.Secret != nil {
		sub.Secret = *subM.Secret
	}

	return sub
}
