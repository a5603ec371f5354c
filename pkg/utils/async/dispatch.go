package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fieldlens/fieldlens/pkg/utils/logging"
)

// Dispatch executes a handler asynchronously in a new goroutine with a
// background context, preserving the request logger. Errors and panics
// are logged, never propagated: callers use this for work whose failure
// must not affect the request that triggered it.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
