package v1

import (
	"io"
	"net/http"

	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
	"github.com/aiteamhq/billsync/internal/integration/stripe/webhook"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/gin-gonic/gin"
)

// Stripe caps event payloads well below this
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler handles webhook-related endpoints
type WebhookHandler struct {
	verifier *stripe.Verifier
	handler  *webhook.Handler
	logger   *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	verifier *stripe.Verifier,
	handler *webhook.Handler,
	logger *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		handler:  handler,
		logger:   logger,
	}
}

// HandleStripeWebhook handles POST / and POST /webhooks/stripe
//
// The raw body is verified against the Stripe-Signature header before anything
// is parsed. Deliveries that were applied, or that can never be applied, are
// acknowledged with 200 so Stripe stops retrying; failed writes answer 500 so
// Stripe redelivers.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warnw("failed to read webhook request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Empty request body",
		})
		return
	}

	event, err := h.verifier.Verify(body, c.GetHeader(types.HeaderStripeSignature))
	if err != nil {
		h.logger.Warnw("rejected Stripe webhook",
			"error", err,
			"request_id", types.GetRequestID(c.Request.Context()),
			"payload_length", len(body))

		message := ierr.GetHint(err)
		if message == "" {
			message = "Failed to verify webhook"
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": message,
		})
		return
	}

	if err := h.handler.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Webhook handler failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
	})
}
