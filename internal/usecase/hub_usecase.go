package usecase

import (
	"context"

	"plume/internal/domain/service"
)

// HubRequest is a parsed hub.mode request from a subscriber.
type HubRequest struct {
	Mode         string `validate:"required,oneof=subscribe unsubscribe"`
	Callback     string `validate:"required,url"`
	Topic        string `validate:"required,url"`
	LeaseSeconds int    `validate:"gte=0"`
	Secret       string `validate:"max=200"`
}

// HubUsecase defines the interface for the WebSub hub. It also listens for
// entry-store changes to notify subscribers of the feed topic.
type HubUsecase interface {
	service.PublishListener

	// HandleRequest validates a subscribe/unsubscribe request and launches
	// the verification-of-intent handshake. Nothing is persisted until the
	// subscriber echoes the challenge; the caller responds 202 immediately.
	HandleRequest(ctx context.Context, req HubRequest) error

	// Distribute delivers the current topic payload to every active
	// subscriber. Deliveries are isolated per subscriber: one failing
	// callback neither blocks nor aborts the others.
	Distribute(ctx context.Context, topic string) error
}
