package handler

import (
	"log/slog"
	"net/http"

	"plume/internal/delivery/http/response"
	"plume/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// IndieAuthHandler holds dependencies for the authorization and token
// endpoints.
type IndieAuthHandler struct {
	uc     usecase.IndieAuthUsecase
	logger *slog.Logger
}

// NewIndieAuthHandler is the constructor for IndieAuthHandler, injected by Fx.
func NewIndieAuthHandler(uc usecase.IndieAuthUsecase, logger *slog.Logger) *IndieAuthHandler {
	return &IndieAuthHandler{
		uc:     uc,
		logger: logger,
	}
}

// Describe handles GET on the authorization endpoint: it validates the
// request and returns the resolved client metadata for the consent step.
func (h *IndieAuthHandler) Describe(c echo.Context) error {
	req := authorizationRequestFrom(c)
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	details, err := h.uc.DescribeAuthorization(c.Request().Context(), req)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, details, "")
}

// Authorize handles POST on the authorization endpoint. With
// grant_type=authorization_code it redeems the code for the profile; any
// other POST is the owner's consent submission, answered with a redirect to
// the client.
func (h *IndieAuthHandler) Authorize(c echo.Context) error {
	if c.FormValue("grant_type") == "authorization_code" {
		result, err := h.uc.RedeemCodeForProfile(c.Request().Context(), exchangeRequestFrom(c))
		if err != nil {
			return errors.WithStack(err)
		}

		return c.JSON(http.StatusOK, result)
	}

	req := authorizationRequestFrom(c)
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	redirect, err := h.uc.Approve(c.Request().Context(), req, c.FormValue("granted_scope"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusFound, redirect)
}

// Token handles the token endpoint: code exchange and refresh, switched on
// grant_type. Responses use the bare OAuth2 wire format.
func (h *IndieAuthHandler) Token(c echo.Context) error {
	switch c.FormValue("grant_type") {
	case "authorization_code":
		result, err := h.uc.ExchangeCode(c.Request().Context(), exchangeRequestFrom(c))
		if err != nil {
			return errors.WithStack(err)
		}

		return c.JSON(http.StatusOK, result)

	case "refresh_token":
		req := usecase.RefreshRequest{
			GrantType:    "refresh_token",
			RefreshToken: c.FormValue("refresh_token"),
			ClientID:     c.FormValue("client_id"),
			Scope:        c.FormValue("scope"),
		}
		if err := c.Validate(&req); err != nil {
			return errors.WithStack(err)
		}

		result, err := h.uc.Refresh(c.Request().Context(), req)
		if err != nil {
			return errors.WithStack(err)
		}

		return c.JSON(http.StatusOK, result)

	default:
		return response.BadRequest(c, "unsupported_grant_type", "grant_type must be authorization_code or refresh_token")
	}
}

// Introspect reports the state of a token. Unknown tokens answer
// {active: false}, not an error.
func (h *IndieAuthHandler) Introspect(c echo.Context) error {
	result, err := h.uc.Introspect(c.Request().Context(), c.FormValue("token"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, result)
}

// Revoke invalidates a token. Always 200, per RFC 7009.
func (h *IndieAuthHandler) Revoke(c echo.Context) error {
	if err := h.uc.Revoke(c.Request().Context(), c.FormValue("token")); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusOK)
}

func authorizationRequestFrom(c echo.Context) usecase.AuthorizationRequest {
	param := func(name string) string {
		if v := c.FormValue(name); v != "" {
			return v
		}

		return c.QueryParam(name)
	}

	return usecase.AuthorizationRequest{
		ClientID:            param("client_id"),
		RedirectURI:         param("redirect_uri"),
		State:               param("state"),
		CodeChallenge:       param("code_challenge"),
		CodeChallengeMethod: param("code_challenge_method"),
		Scope:               param("scope"),
		Me:                  param("me"),
	}
}

func exchangeRequestFrom(c echo.Context) usecase.ExchangeRequest {
	return usecase.ExchangeRequest{
		GrantType:    c.FormValue("grant_type"),
		Code:         c.FormValue("code"),
		ClientID:     c.FormValue("client_id"),
		RedirectURI:  c.FormValue("redirect_uri"),
		CodeVerifier: c.FormValue("code_verifier"),
	}
}
