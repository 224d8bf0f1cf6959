package router

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aiteamhq/billsync/internal/config"
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/pubsub/memory"
	"github.com/aiteamhq/billsync/internal/sentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runHandler delivers one message to a handler and returns how many attempts were made
func runHandler(t *testing.T, handlerErr error) int32 {
	t.Helper()

	log := logger.NewNopLogger()
	ps := memory.NewPubSub(log)
	defer ps.Close()

	r, err := NewRouter(log, sentry.NewSentryService(config.GetDefaultConfig(), log))
	require.NoError(t, err)

	var attempts int32
	done := make(chan struct{}, 1)
	r.AddNoPublishHandler("test_handler", "test_topic", ps, func(msg *message.Message) error {
		atomic.AddInt32(&attempts, 1)
		select {
		case done <- struct{}{}:
		default:
		}
		return handlerErr
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = r.Run(ctx)
	}()
	<-r.Running()

	require.NoError(t, ps.Publish(ctx, "test_topic", message.NewMessage(watermill.NewUUID(), []byte(`{}`))))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never ran")
	}

	// leave room for retries to finish
	time.Sleep(2500 * time.Millisecond)
	require.NoError(t, r.Close())
	return atomic.LoadInt32(&attempts)
}

func TestHandlerSuccessRunsOnce(t *testing.T) {
	assert.Equal(t, int32(1), runHandler(t, nil))
}

func TestNonRetryableErrorIsAcked(t *testing.T) {
	err := ierr.NewError("no such subscription").Mark(ierr.ErrNotFound)
	assert.Equal(t, int32(1), runHandler(t, err))
}

func TestRetryableErrorIsRetried(t *testing.T) {
	assert.Equal(t, int32(maxRetries+1), runHandler(t, stderrors.New("temporarily unavailable")))
}

func TestShouldRetry(t *testing.T) {
	log := logger.NewNopLogger()

	assert.False(t, shouldRetry(log, nil))
	assert.False(t, shouldRetry(log, context.Canceled))
	assert.False(t, shouldRetry(log, ierr.NewError("bad").Mark(ierr.ErrValidation)))
	assert.False(t, shouldRetry(log, ierr.NewError("gone").Mark(ierr.ErrNotFound)))
	assert.True(t, shouldRetry(log, ierr.NewError("db down").Mark(ierr.ErrDatabase)))
	assert.True(t, shouldRetry(log, stderrors.New("unknown")))
}
