package handler

import (
	"log/slog"
	"net/http"

	"plume/internal/delivery/http/response"
	"plume/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TrustedDomainHandler manages the webmention verification allow-list.
type TrustedDomainHandler struct {
	uc     usecase.TrustedDomainUsecase
	logger *slog.Logger
}

// NewTrustedDomainHandler is the constructor for TrustedDomainHandler, injected by Fx.
func NewTrustedDomainHandler(uc usecase.TrustedDomainUsecase, logger *slog.Logger) *TrustedDomainHandler {
	return &TrustedDomainHandler{
		uc:     uc,
		logger: logger,
	}
}

// List returns the full allow-list.
func (h *TrustedDomainHandler) List(c echo.Context) error {
	domains, err := h.uc.ListTrustedDomains(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, domains, "")
}

// Add allow-lists a domain. Idempotent.
func (h *TrustedDomainHandler) Add(c echo.Context) error {
	if err := h.uc.AddTrustedDomain(c.Request().Context(), c.FormValue("domain")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, nil, "Trusted domain added")
}

// Remove drops a domain from the allow-list.
func (h *TrustedDomainHandler) Remove(c echo.Context) error {
	if err := h.uc.RemoveTrustedDomain(c.Request().Context(), c.Param("domain")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Trusted domain removed")
}
