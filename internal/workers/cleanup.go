package workers

import (
	"context"
	"time"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/service"
)

// cleanupWorker periodically purges expired recycle-bin entries across all
// accounts. Entries still inside their retention window are never touched.
type cleanupWorker struct {
	ledger   service.LedgerService
	interval time.Duration

	ctx    context.Context
	logger *logger.Logger
}

// NewCleanupWorker constructs the recycle-bin expiry sweeper. The worker
// stops when ctx is cancelled. A non-positive interval falls back to one
// hour.
func NewCleanupWorker(ctx context.Context, ledger service.LedgerService, interval time.Duration, log *logger.Logger) Worker {
	if interval <= 0 {
		interval = time.Hour
	}

	return &cleanupWorker{
		ledger:   ledger,
		interval: interval,
		ctx:      ctx,
		logger:   log,
	}
}

// Run implements [Worker]. It spawns the sweep loop and returns immediately.
func (w *cleanupWorker) Run() {
	go w.loop()
}

func (w *cleanupWorker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("recycle bin cleanup worker started")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info().Msg("recycle bin cleanup worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *cleanupWorker) sweep() {
	ctx := w.logger.WithContext(w.ctx)

	purged, err := w.ledger.CleanupExpired(ctx)
	if err != nil {
		w.logger.Err(err).Msg("recycle bin sweep failed")
		return
	}

	if len(purged) > 0 {
		w.logger.Info().
			Int("count", len(purged)).
			Strs("item_ids", purged).
			Msg("expired recycle bin entries purged")
	}
}
