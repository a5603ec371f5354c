package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldlens/fieldlens/pkg/domain/types"
	"github.com/fieldlens/fieldlens/pkg/service/names"
	"github.com/fieldlens/fieldlens/pkg/utils/logging"
)

// RegistryWarmWorker keeps the name snapshot cache warm for the
// configured entity codes so resolution rarely pays a cold registry read.
//
// Architecture assumptions:
// - Single server instance (no distributed coordination needed; a warm
//   cycle is idempotent anyway)
type RegistryWarmWorker struct {
	cache    *names.Cache
	codes    []types.EntityCode
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRegistryWarmWorker creates a worker warming the given entity codes
func NewRegistryWarmWorker(cache *names.Cache, codes []types.EntityCode, interval time.Duration) *RegistryWarmWorker {
	return &RegistryWarmWorker{
		cache:    cache,
		codes:    codes,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the warm loop in a background goroutine; it does not
// block server startup
func (w *RegistryWarmWorker) Start(ctx context.Context) error {
	logging.Default().Info("registry warm worker starting",
		"interval", w.interval.String(),
		"entities", len(w.codes))

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *RegistryWarmWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("registry warm worker stopped")
}

func (w *RegistryWarmWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.warm(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.warm(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("registry warm worker context cancelled")
			return
		}
	}
}

// warm refreshes every configured entity code. A failed code is logged
// and retried next cycle; it never stops the loop.
func (w *RegistryWarmWorker) warm(ctx context.Context) {
	cycleID := uuid.NewString()
	startTime := time.Now()

	for _, code := range w.codes {
		if err := w.cache.Refresh(ctx, code); err != nil {
			logging.Default().Error("registry warm failed (will retry next interval)",
				"cycle", cycleID,
				"entity", code,
				"error", err.Error())
		}
	}

	logging.Default().Info("registry warm cycle completed",
		"cycle", cycleID,
		"entities", len(w.codes),
		"duration", time.Since(startTime).String())
}
