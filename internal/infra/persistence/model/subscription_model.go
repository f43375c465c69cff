package model

import "time"

// SubscriptionModel mirrors the 'websub_subscriptions' table. The
// (callback, topic) pair is the identity of a lease.
type SubscriptionModel struct {
	Callback       string    `gorm:"type:text;primaryKey"`
	Topic          string    `gorm:"type:text;primaryKey;index"`
	Secret         *string   `gorm:"type:text"`
	ExpiresAt      time.Time `gorm:"not null;index"`
	LastDeliveryAt time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (SubscriptionModel) TableName() string {
	return "websub_subscriptions"
}

// TrustedDomainModel mirrors the 'trusted_domains' table.
type TrustedDomainModel struct {
	Domain    string    `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (TrustedDomainModel) TableName() string {
	return "trusted_domains"
}
