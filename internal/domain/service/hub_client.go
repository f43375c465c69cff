package service

import "context"

// HubClient performs the subscriber-facing network legs of the WebSub hub.
type HubClient interface {
	// VerifyIntent issues the subscription verification handshake: a GET to
	// the callback with hub.mode, hub.topic, hub.challenge and, for
	// subscribes, hub.lease_seconds. It returns an error unless the
	// subscriber echoes the challenge with a 2xx status.
	VerifyIntent(ctx context.Context, callback, mode, topic, challenge string, leaseSeconds int) error

	// Deliver posts the topic payload to the callback. When secret is
	// non-empty the payload is signed with HMAC-SHA256 in the
	// X-Hub-Signature header.
	Deliver(ctx context.Context, callback, topic string, payload []byte, contentType, secret string) error
}

// TopicSource renders the current representation of a topic for delivery.
// The real feed renderer is an external collaborator; the core ships a
// minimal JSON snapshot implementation.
type TopicSource interface {
	Snapshot(ctx context.Context, topic string) (payload []byte, contentType string, err error)
}
