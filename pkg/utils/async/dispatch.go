package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
)

// Dispatcher runs handler, possibly on another goroutine. Errors and panics
// are logged, never returned.
type Dispatcher func(ctx context.Context, handler func(ctx context.Context) error)

// Dispatch runs handler on a new goroutine. The handler gets a background
// context carrying the logger of ctx, so it outlives the request that started it.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))
	go run(bgCtx, "async", handler)
}

// Inline runs handler on the calling goroutine
func Inline(ctx context.Context, handler func(ctx context.Context) error) {
	run(ctx, "inline", handler)
}

func run(ctx context.Context, mode string, handler func(ctx context.Context) error) {
	logger := logging.From(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in "+mode+" handler", "panic", r)
		}
	}()

	if err := handler(ctx); err != nil {
		logger.Error(mode+" handler failed", "error", goerr.Unwrap(err))
	}
}
