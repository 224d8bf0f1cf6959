package testutil

import (
	"context"

	"github.com/aiteamhq/billsync/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	ctx = types.SetEventID(ctx, "evt_test")
	return ctx
}
