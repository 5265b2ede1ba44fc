package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called.
type mockWorker struct {
	runCount int
}

func (m *mockWorker) Run() {
	m.runCount++
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := NewWorkers(w1, w2, w3)
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := NewWorkers()

	// Should not panic on empty workers list
	ws.Run()
}

type countingFlusher struct {
	calls atomic.Int64
}

func (f *countingFlusher) Flush(context.Context) {
	f.calls.Add(1)
}

func TestFlushIntervalWorker_TicksAndStops(t *testing.T) {
	f := &countingFlusher{}
	w := NewFlushIntervalWorker(f, 5*time.Millisecond, logger.NewLogger("test"))

	w.Run()
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	ticked := f.calls.Load()
	if ticked < 2 {
		t.Errorf("expected at least 2 ticks, got %d", ticked)
	}

	// Stop runs one final flush and halts the ticker
	after := f.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if f.calls.Load() != after {
		t.Errorf("expected no ticks after Stop, got %d more", f.calls.Load()-after)
	}
}

func TestFlushIntervalWorker_StopWithoutRun(t *testing.T) {
	f := &countingFlusher{}
	w := NewFlushIntervalWorker(f, time.Second, logger.NewLogger("test"))

	// Stop on an idle worker must not panic; it still flushes once.
	w.Stop()
	if f.calls.Load() != 1 {
		t.Errorf("expected exactly the teardown flush, got %d", f.calls.Load())
	}
}
