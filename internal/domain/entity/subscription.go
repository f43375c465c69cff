package entity

import "time"

// Subscription is a WebSub subscriber lease, identified by the
// (callback, topic) pair.
type Subscription struct {
	Callback string `json:"callback"`
	Topic    string `json:"topic"`
	// Secret keys the HMAC-SHA256 signature of delivered payloads. Empty
	// means unsigned delivery.
	Secret         string    `json:"-"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastDeliveryAt time.Time `json:"last_delivery_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Active reports whether the lease is still current.
func (s *Subscription) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
