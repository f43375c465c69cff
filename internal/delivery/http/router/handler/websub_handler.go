package handler

import (
	"log/slog"
	"strconv"

	"plume/internal/delivery/http/response"
	"plume/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// WebSubHandler holds dependencies for the hub endpoint.
type WebSubHandler struct {
	uc     usecase.HubUsecase
	logger *slog.Logger
}

// NewWebSubHandler is the constructor for WebSubHandler, injected by Fx.
func NewWebSubHandler(uc usecase.HubUsecase, logger *slog.Logger) *WebSubHandler {
	return &WebSubHandler{
		uc:     uc,
		logger: logger,
	}
}

// Handle accepts a subscriber request. The verification-of-intent handshake
// runs after the 202 response; nothing is persisted before it succeeds.
func (h *WebSubHandler) Handle(c echo.Context) error {
	leaseSeconds, _ := strconv.Atoi(c.FormValue("hub.lease_seconds"))

	req := usecase.HubRequest{
		Mode:         c.FormValue("hub.mode"),
		Callback:     c.FormValue("hub.callback"),
		Topic:        c.FormValue("hub.topic"),
		LeaseSeconds: leaseSeconds,
		Secret:       c.FormValue("hub.secret"),
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.HandleRequest(c.Request().Context(), req); err != nil {
		return errors.WithStack(err)
	}

	return response.Accepted(c, nil, "Subscription request accepted for verification")
}

// Publish pushes the current topic payload to every active subscriber.
func (h *WebSubHandler) Publish(c echo.Context) error {
	topic := c.FormValue("hub.url")
	if topic == "" {
		topic = c.FormValue("hub.topic")
	}

	if err := h.uc.Distribute(c.Request().Context(), topic); err != nil {
		return errors.WithStack(err)
	}

	return response.Accepted(c, nil, "Topic distribution started")
}
