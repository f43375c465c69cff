// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"plume/config"
	"plume/internal/delivery/http/response"
	"plume/internal/domain/entity"
	"plume/internal/domain/service"
	"plume/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// EntryHandler holds dependencies for entry store handlers.
type EntryHandler struct {
	uc     usecase.EntryUsecase
	topics service.TopicSource
	cfg    *config.Config
	logger *slog.Logger
}

// NewEntryHandler is the constructor for EntryHandler, injected by Fx.
func NewEntryHandler(uc usecase.EntryUsecase, topics service.TopicSource, cfg *config.Config, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{
		uc:     uc,
		topics: topics,
		cfg:    cfg,
		logger: logger,
	}
}

// Create handles the creation of a new entry from a microformats2 document.
func (h *EntryHandler) Create(c echo.Context) error {
	var doc entity.Document
	if err := c.Bind(&doc); err != nil {
		return response.BindingError(c, "invalid_request", "Invalid microformats2 document")
	}

	entry, err := h.uc.CreateEntry(c.Request().Context(), doc)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set("Location", entry.Location)

	return response.Success(c, http.StatusCreated, entry, "Entry created")
}

// Get retrieves an entry by UUID. Tombstones answer 410.
func (h *EntryHandler) Get(c echo.Context) error {
	id, err := parseUUIDParam(c)
	if err != nil {
		return err
	}

	entry, err := h.uc.GetEntry(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}
	if entry.Deleted {
		return response.Gone(c, "entry_deleted", "The entry has been deleted")
	}

	return response.Success(c, http.StatusOK, entry, "")
}

// Update overlays a document onto the stored entry.
func (h *EntryHandler) Update(c echo.Context) error {
	id, err := parseUUIDParam(c)
	if err != nil {
		return err
	}

	var doc entity.Document
	if err := c.Bind(&doc); err != nil {
		return response.BindingError(c, "invalid_request", "Invalid microformats2 document")
	}

	entry, err := h.uc.UpdateEntry(c.Request().Context(), id, doc)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, entry, "Entry updated")
}

// Delete soft-deletes an entry, leaving a tombstone.
func (h *EntryHandler) Delete(c echo.Context) error {
	id, err := parseUUIDParam(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeleteEntry(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Entry deleted")
}

// Undelete restores a tombstoned entry under its original UUID.
func (h *EntryHandler) Undelete(c echo.Context) error {
	id, err := parseUUIDParam(c)
	if err != nil {
		return err
	}

	if err := h.uc.UndeleteEntry(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Entry restored")
}

// Search runs a full-text query over live entries.
func (h *EntryHandler) Search(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	entries, err := h.uc.SearchEntries(c.Request().Context(), c.QueryParam("q"), limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, entries, "")
}

// Thread returns the reply tree rooted at an entry.
func (h *EntryHandler) Thread(c echo.Context) error {
	id, err := parseUUIDParam(c)
	if err != nil {
		return err
	}

	thread, err := h.uc.GetThread(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, thread, "")
}

// Feed serves the site feed, the payload WebSub subscribers receive. The
// response advertises the hub so readers can subscribe.
func (h *EntryHandler) Feed(c echo.Context) error {
	topic := h.cfg.Site.BaseURL + h.cfg.Site.FeedPath

	payload, contentType, err := h.topics.Snapshot(c.Request().Context(), topic)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set("Link",
		`<`+h.cfg.Site.BaseURL+`/websub>; rel="hub", <`+topic+`>; rel="self"`)

	return c.Blob(http.StatusOK, contentType, payload)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

func parseUUIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid entry UUID")
	}

	return id, nil
}
