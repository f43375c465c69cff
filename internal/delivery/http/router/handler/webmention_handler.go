package handler

import (
	"log/slog"
	"net/http"

	"plume/internal/delivery/http/response"
	"plume/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// WebMentionHandler holds dependencies for the webmention endpoint.
type WebMentionHandler struct {
	uc     usecase.MentionUsecase
	logger *slog.Logger
}

// NewWebMentionHandler is the constructor for WebMentionHandler, injected by Fx.
func NewWebMentionHandler(uc usecase.MentionUsecase, logger *slog.Logger) *WebMentionHandler {
	return &WebMentionHandler{
		uc:     uc,
		logger: logger,
	}
}

// Receive accepts an inbound webmention. Verification runs after the 202
// response; the Location header points at the status resource.
func (h *WebMentionHandler) Receive(c echo.Context) error {
	source := c.FormValue("source")
	target := c.FormValue("target")
	vouch := c.FormValue("vouch")

	mention, err := h.uc.ReceiveMention(c.Request().Context(), source, target, vouch)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set("Location", "/webmention/"+mention.UUID.String())

	return response.Accepted(c, mention, "Webmention accepted for verification")
}

// Status reports the verification state of a mention.
func (h *WebMentionHandler) Status(c echo.Context) error {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid mention UUID")
	}

	mention, err := h.uc.MentionStatus(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, mention, "")
}
