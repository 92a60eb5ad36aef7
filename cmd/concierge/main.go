package main

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os"

	"concierge/config"
	"concierge/internal/delivery"
	"concierge/internal/delivery/http"
	"concierge/internal/delivery/http/router/handler"
	"concierge/internal/infra/cache"
	"concierge/internal/infra/dinodial"
	"concierge/internal/infra/inference"
	logs "concierge/internal/infra/log"
	"concierge/internal/infra/mailer"
	"concierge/internal/infra/persistence/postgres"
	"concierge/internal/scheduler"
	"concierge/internal/usecase/impl"

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
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		newAppContext,
		postgres.New,
	)
}

// newAppContext provides the context delivery loops run under. It is
// cancelled during shutdown so in-flight work observes cancellation.
func newAppContext(lc fx.Lifecycle) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})

	return ctx
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewCustomerRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			dinodial.NewClient,
			inference.NewClient,
			mailer.NewSMTPSender,
			cache.NewHandledCalls,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCustomerService,
			impl.NewPhoneCallService,
			impl.NewOutcomeExtractor,
			impl.NewFlowService,
			impl.NewNotificationService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewCustomerHandler,
			handler.NewFlowHandler,
			handler.NewPhoneCallHandler,
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
			fx.Annotate(
				scheduler.New,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
