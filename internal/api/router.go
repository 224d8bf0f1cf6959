package api

import (
	v1 "github.com/aiteamhq/billsync/internal/api/v1"
	"github.com/aiteamhq/billsync/internal/config"
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Webhook *v1.WebhookHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.SentryTagMiddleware,
		middleware.AccessLogMiddleware(logger),
		middleware.ErrorHandler(),
		gin.Recovery(),
	)

	router.GET("/health", handlers.Health.Health)

	// Stripe is pointed at the bare function URL in production
	router.POST("/", handlers.Webhook.HandleStripeWebhook)

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}

	router.NoRoute(func(c *gin.Context) {
		c.Error(ierr.NewError("route not found").
			WithHintf("No route for %s %s", c.Request.Method, c.Request.URL.Path).
			Mark(ierr.ErrNotFound))
	})

	return router
}
