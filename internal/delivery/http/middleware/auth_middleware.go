package middleware

import (
	"strings"

	"plume/internal/delivery/http/response"
	"plume/internal/domain/entity"
	"plume/internal/usecase"

	"github.com/labstack/echo/v4"
)

// contextKeyToken is the echo.Context key carrying the verified grant.
const contextKeyToken = "token"

// AuthMiddleware authenticates requests against the token service.
type AuthMiddleware struct {
	indieAuth usecase.IndieAuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(indieAuth usecase.IndieAuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{indieAuth: indieAuth}
}

// Authenticate validates the Bearer token and stores the grant on the
// request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "unauthorized", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "unauthorized", "Invalid token format, must be Bearer token")
		}

		token, err := m.indieAuth.Verify(c.Request().Context(), tokenString)
		if err != nil {
			return response.Unauthorized(c, "unauthorized", "Invalid, expired or revoked token")
		}

		c.Set(contextKeyToken, token)

		return next(c)
	}
}

// RequireScope is a middleware factory that checks the grant for a scope.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromContext(c)
			if token == nil {
				return response.Unauthorized(c, "unauthorized", "No grant on request")
			}
			if !token.HasScope(scope) {
				return response.Forbidden(c, "insufficient_scope", "The grant does not include the '"+scope+"' scope")
			}

			return next(c)
		}
	}
}

// TokenFromContext returns the verified grant set by Authenticate, or nil.
func TokenFromContext(c echo.Context) *entity.Token {
	token, ok := c.Get(contextKeyToken).(*entity.Token)
	if !ok {
		return nil
	}

	return token
}
