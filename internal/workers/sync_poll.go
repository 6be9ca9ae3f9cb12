package workers

import (
	"context"
	"time"

	"github.com/antonvlasov/finsync/internal/adapter"
	"github.com/antonvlasov/finsync/internal/bus"
	"github.com/antonvlasov/finsync/internal/logger"
)

// syncPollWorker is the client-side dirty-signal poller. It periodically
// fetches this device's sync metadata and publishes [bus.TopicDataChanged]
// whenever the sync version tag moves, meaning another device changed data
// and a pull is required. Transient fetch failures are logged and retried on
// the next tick.
type syncPollWorker struct {
	client   adapter.SyncClient
	bus      *bus.Bus
	deviceID string
	interval time.Duration

	lastTag string

	ctx    context.Context
	logger *logger.Logger
}

// NewSyncPollWorker constructs the dirty-signal poller. The worker stops
// when ctx is cancelled. A non-positive interval falls back to 30 seconds.
func NewSyncPollWorker(ctx context.Context, client adapter.SyncClient, eventBus *bus.Bus, deviceID string, interval time.Duration, log *logger.Logger) Worker {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &syncPollWorker{
		client:   client,
		bus:      eventBus,
		deviceID: deviceID,
		interval: interval,
		ctx:      ctx,
		logger:   log,
	}
}

// Run implements [Worker]. It spawns the poll loop and returns immediately.
func (w *syncPollWorker) Run() {
	go w.loop()
}

func (w *syncPollWorker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().
		Str("device_id", w.deviceID).
		Dur("interval", w.interval).
		Msg("sync poll worker started")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info().Msg("sync poll worker stopped")
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *syncPollWorker) poll() {
	if w.client.Token() == "" {
		// Not logged in yet; nothing to poll.
		return
	}

	meta, err := w.client.GetSyncMeta(w.ctx, w.deviceID)
	if err != nil {
		w.logger.Debug().Err(err).Msg("sync meta poll failed, will retry")
		return
	}

	if w.lastTag != "" && meta.SyncVersionTag != w.lastTag {
		delivered := w.bus.Publish(bus.TopicDataChanged, meta.SyncVersionTag)
		w.logger.Info().
			Str("sync_version_tag", meta.SyncVersionTag).
			Int("subscribers", delivered).
			Msg("remote data changed, pull required")
	}

	w.lastTag = meta.SyncVersionTag
}
