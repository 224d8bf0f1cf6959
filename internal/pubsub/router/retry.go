package router

import (
	"context"
	"net"

	"github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/logger"
)

// shouldRetry reports whether a failed message is worth another attempt
func shouldRetry(logger *logger.Logger, err error) bool {
	if err == nil {
		return false
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}

	if err == context.Canceled {
		return false
	}

	// Business logic errors (don't retry)
	if errors.IsValidation(err) || errors.IsNotFound(err) {
		logger.Debugw("non-retryable handler error", "error", err)
		return false
	}

	// By default, retry unknown errors
	return true
}
