package main

import (
	"context"
	"time"

	"github.com/aiteamhq/billsync/internal/api"
	v1 "github.com/aiteamhq/billsync/internal/api/v1"
	"github.com/aiteamhq/billsync/internal/billingevents"
	billingEventHandler "github.com/aiteamhq/billsync/internal/billingevents/handler"
	"github.com/aiteamhq/billsync/internal/cache"
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
	"github.com/aiteamhq/billsync/internal/integration/stripe/webhook"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/postgres"
	pubsubRouter "github.com/aiteamhq/billsync/internal/pubsub/router"
	"github.com/aiteamhq/billsync/internal/repository"
	"github.com/aiteamhq/billsync/internal/sentry"
	"github.com/aiteamhq/billsync/internal/service"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/aiteamhq/billsync/internal/validator"
	"go.uber.org/fx"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

func init() {
	// Stripe timestamps and period boundaries are compared in UTC
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Repositories
			repository.NewProfileRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewPlanPriceRepository,

			// Stripe
			stripe.NewClient,
			stripe.NewGateway,
			stripe.NewVerifier,

			// PubSub
			pubsubRouter.NewRouter,
		),
		sentry.Module(),
		postgres.Module(),
		billingevents.Module,
	)

	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewResolverService,
			service.NewBillingSyncService,
			webhook.NewHandler,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	verifier *stripe.Verifier,
	webhookHandler *webhook.Handler,
	logger *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Webhook: v1.NewWebhookHandler(verifier, webhookHandler, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	eventHandler billingEventHandler.Handler,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, eventHandler, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	eventHandler billingEventHandler.Handler,
	log *logger.Logger,
) {
	// Register handlers before starting the router
	eventHandler.RegisterHandler(router)

	routerCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting message router")
			go func() {
				if err := router.Run(routerCtx); err != nil {
					log.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping message router")
			cancel()
			return router.Close()
		},
	})
}
