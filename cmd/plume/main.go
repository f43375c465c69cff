package main

import (
	"context"
	"log/slog"
	"os"

	"plume/config"
	"plume/internal/delivery"
	"plume/internal/delivery/http"
	httpmiddleware "plume/internal/delivery/http/middleware"
	"plume/internal/delivery/http/router/handler"
	deliverymiddleware "plume/internal/delivery/middleware"
	"plume/internal/domain/service"
	"plume/internal/infra/auth"
	logs "plume/internal/infra/log"
	"plume/internal/infra/persistence/postgres"
	"plume/internal/infra/protocol"
	"plume/internal/usecase"
	"plume/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
			postgres.NewEntryRepository,
			postgres.NewTokenRepository,
			postgres.NewMentionRepository,
			postgres.NewSubscriptionRepository,
			postgres.NewTrustedDomainRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewTokenSource,
			auth.NewCodeChallengeVerifier,
			protocol.NewClientResolver,
			protocol.NewMentionClient,
			protocol.NewHubClient,
			protocol.NewTopicSource,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewEntryService,
			impl.NewIndieAuthService,
			impl.NewMentionService,
			impl.NewHubService,
			impl.NewTrustedDomainService,
			newPublishListeners,
		),
	)
}

// newPublishListeners wires the two protocol pipelines behind the entry
// store: every successful mutation fans out to both.
func newPublishListeners(mention usecase.MentionUsecase, hub usecase.HubUsecase) []service.PublishListener {
	return []service.PublishListener{mention, hub}
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			httpmiddleware.NewAuthMiddleware,
			httpmiddleware.NewErrorMiddleware,
			deliverymiddleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewEntryHandler,
			handler.NewIndieAuthHandler,
			handler.NewWebMentionHandler,
			handler.NewWebSubHandler,
			handler.NewTrustedDomainHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
