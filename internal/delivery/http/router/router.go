// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	httpmiddleware "plume/internal/delivery/http/middleware"
	"plume/internal/delivery/http/router/handler"
	"plume/internal/delivery/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	EntryHandler         *handler.EntryHandler
	IndieAuthHandler     *handler.IndieAuthHandler
	WebMentionHandler    *handler.WebMentionHandler
	WebSubHandler        *handler.WebSubHandler
	TrustedDomainHandler *handler.TrustedDomainHandler
	AuthMiddleware       *httpmiddleware.AuthMiddleware
	RequestIDMiddleware  *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	params RouterParams
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{params: params}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.params.RequestIDMiddleware.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Published feed, the WebSub topic
	e.GET("/feed", r.params.EntryHandler.Feed)

	// IndieAuth authorization and token endpoints
	e.GET("/auth", r.params.IndieAuthHandler.Describe)
	e.POST("/auth", r.params.IndieAuthHandler.Authorize)
	e.POST("/token", r.params.IndieAuthHandler.Token)
	e.POST("/introspect", r.params.IndieAuthHandler.Introspect)
	e.POST("/revoke", r.params.IndieAuthHandler.Revoke)

	// WebMention receiver and status resources
	e.POST("/webmention", r.params.WebMentionHandler.Receive)
	e.GET("/webmention/:uuid", r.params.WebMentionHandler.Status)

	// WebSub hub
	e.POST("/websub", r.params.WebSubHandler.Handle)

	// Entry store: reads are public, mutations need a scoped grant
	auth := r.params.AuthMiddleware
	entries := e.Group("/entries")
	{
		entries.GET("/search", r.params.EntryHandler.Search)
		entries.GET("/:uuid", r.params.EntryHandler.Get)
		entries.GET("/:uuid/thread", r.params.EntryHandler.Thread)

		entries.POST("", r.params.EntryHandler.Create, auth.Authenticate, auth.RequireScope("create"))
		entries.PUT("/:uuid", r.params.EntryHandler.Update, auth.Authenticate, auth.RequireScope("update"))
		entries.DELETE("/:uuid", r.params.EntryHandler.Delete, auth.Authenticate, auth.RequireScope("delete"))
		entries.POST("/:uuid/undelete", r.params.EntryHandler.Undelete, auth.Authenticate, auth.RequireScope("undelete"))
	}

	// Owner-only surfaces
	e.POST("/websub/publish", r.params.WebSubHandler.Publish, auth.Authenticate, auth.RequireScope("update"))
	trusted := e.Group("/trusted-domains", auth.Authenticate, auth.RequireScope("update"))
	{
		trusted.GET("", r.params.TrustedDomainHandler.List)
		trusted.POST("", r.params.TrustedDomainHandler.Add)
		trusted.DELETE("/:domain", r.params.TrustedDomainHandler.Remove)
	}
}
