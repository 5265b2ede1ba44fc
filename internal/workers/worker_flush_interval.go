package workers

import (
	"context"
	"sync"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
)

const defaultSyncInterval = 5 * time.Second

// Flusher pushes pending local changes to the server. Satisfied by
// mirror.Mirror.
type Flusher interface {
	Flush(ctx context.Context)
}

// FlushIntervalWorker drives a flush cycle on a fixed ticker. The debounce
// path handles the common case; this worker bounds worst-case staleness when
// a scheduled flush was lost or deferred repeatedly.
type FlushIntervalWorker struct {
	flusher  Flusher
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFlushIntervalWorker creates the background staleness-bounding worker.
// A non-positive interval falls back to 5 seconds.
func NewFlushIntervalWorker(flusher Flusher, interval time.Duration, log *logger.Logger) *FlushIntervalWorker {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &FlushIntervalWorker{flusher: flusher, interval: interval, logger: log}
}

// Run implements Worker. It launches the ticker goroutine; the goroutine
// exits when Stop is called.
func (w *FlushIntervalWorker) Run() {
	w.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	w.logger.Debug().Dur("interval", w.interval).Msg("starting flush interval worker")

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				w.flusher.Flush(ctx)
			}
		}
	}()
}

// Stop cancels the ticker goroutine, waits for it to exit, and runs one final
// flush so writes made just before shutdown still reach the server. Safe to
// call when the worker is not running.
func (w *FlushIntervalWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()

	w.flusher.Flush(context.Background())
}
