package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/adapter"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/intent"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

const (
	defaultFlushDebounce = 1 * time.Second
	defaultFlushRetry    = 2 * time.Second
)

// Mirror wraps the local store with dirty-key tracking and a debounced push
// loop. One instance serves the whole agent process.
type Mirror struct {
	local     store.LocalStore
	adapter   adapter.ServerAdapter
	intents   *intent.Recorder
	scheduler Scheduler
	logger    *logger.Logger

	debounce time.Duration
	retry    time.Duration

	mu         sync.Mutex
	dirty      map[string]struct{}
	lastSynced map[string]string
	pending    CancelFunc
	flushing   bool
}

// New builds a Mirror over the local store. A nil scheduler falls back to the
// real-time implementation; zero durations fall back to the 1s debounce and
// 2s retry defaults.
func New(local store.LocalStore, serverAdapter adapter.ServerAdapter, recorder *intent.Recorder, cfg config.ClientWorkers, scheduler Scheduler, log *logger.Logger) *Mirror {
	if scheduler == nil {
		scheduler = NewTimeScheduler()
	}
	if cfg.FlushDebounce <= 0 {
		cfg.FlushDebounce = defaultFlushDebounce
	}
	if cfg.FlushRetry <= 0 {
		cfg.FlushRetry = defaultFlushRetry
	}

	return &Mirror{
		local:      local,
		adapter:    serverAdapter,
		intents:    recorder,
		scheduler:  scheduler,
		logger:     log,
		debounce:   cfg.FlushDebounce,
		retry:      cfg.FlushRetry,
		dirty:      make(map[string]struct{}),
		lastSynced: make(map[string]string),
	}
}

func (m *Mirror) Get(ctx context.Context, key string) (json.RawMessage, error) {
	return m.local.Get(ctx, key)
}

func (m *Mirror) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := m.local.Set(ctx, key, value); err != nil {
		return fmt.Errorf("local set %s: %w", key, err)
	}

	if models.IsSyncExcludedKey(key) {
		return nil
	}

	m.markDirty(key)
	return nil
}

func (m *Mirror) Delete(ctx context.Context, key string) error {
	if models.IsProtectedKey(key) {
		if _, ok := m.intents.Active(key); !ok {
			return fmt.Errorf("%w: local delete of %s", intent.ErrIntentRequired, key)
		}
	}

	if err := m.local.Delete(ctx, key); err != nil {
		return fmt.Errorf("local delete %s: %w", key, err)
	}

	if models.IsSyncExcludedKey(key) {
		return nil
	}

	m.markDirty(key)
	return nil
}

func (m *Mirror) Keys(ctx context.Context) ([]string, error) {
	all, err := m.local.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("local snapshot: %w", err)
	}

	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	return keys, nil
}

// MarkSynced records the serialization last agreed with the server, so the
// next flush can skip a push whose payload would be identical. Bootstrap uses
// it after hydration; flush uses it after every accepted push.
func (m *Mirror) MarkSynced(key string, value json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSynced[key] = string(value)
}

// MarkDirty queues a key for the next flush cycle without touching the local
// value. The interval worker uses it to re-drive keys that failed earlier.
func (m *Mirror) MarkDirty(key string) {
	if models.IsSyncExcludedKey(key) {
		return
	}
	m.markDirty(key)
}

// DirtyCount reports how many keys are waiting for the next flush.
func (m *Mirror) DirtyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirty)
}

func (m *Mirror) markDirty(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirty[key] = struct{}{}
	m.armDebounceLocked(m.debounce)
}

// armDebounceLocked restarts the shared one-shot timer. Callers hold m.mu.
func (m *Mirror) armDebounceLocked(d time.Duration) {
	if m.pending != nil {
		m.pending()
	}
	m.pending = m.scheduler.ScheduleAfter(d, func() {
		m.Flush(context.Background())
	})
}

// Flush pushes every dirty key to the server. A cycle already in progress
// makes Flush a no-op; keys marked dirty during a cycle are picked up by the
// next one. Keys that fail to push are re-marked dirty and a retry is
// scheduled, so delivery is at-least-once.
func (m *Mirror) Flush(ctx context.Context) {
	m.mu.Lock()
	if m.flushing || len(m.dirty) == 0 {
		m.mu.Unlock()
		return
	}
	m.flushing = true
	batch := m.dirty
	m.dirty = make(map[string]struct{})
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.flushing = false
		m.mu.Unlock()
	}()

	if m.adapter.Token() == "" {
		m.logger.Debug().Str("func", "*Mirror.Flush").Int("deferred", len(batch)).Msg("no session, deferring flush")
		m.requeue(batch)
		return
	}

	failed := make(map[string]struct{})
	for key := range batch {
		if err := m.pushKey(ctx, key); err != nil {
			m.logger.Err(err).Str("key", key).Msg("push failed, key stays dirty")
			failed[key] = struct{}{}
		}
	}

	if len(failed) > 0 {
		m.requeue(failed)
	}
}

// requeue puts keys back in the dirty set and arms the retry timer.
func (m *Mirror) requeue(keys map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range keys {
		m.dirty[key] = struct{}{}
	}
	m.armDebounceLocked(m.retry)
}

func (m *Mirror) pushKey(ctx context.Context, key string) error {
	value, err := m.local.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return m.pushDelete(ctx, key)
	}
	if err != nil {
		return fmt.Errorf("load local value: %w", err)
	}

	serialized := string(value)
	m.mu.Lock()
	unchanged := m.lastSynced[key] == serialized
	m.mu.Unlock()
	if unchanged {
		return nil
	}

	header := ""
	if it, ok := m.intents.Active(key); ok {
		header = it.HeaderValue()
	}

	if err = m.adapter.Save(ctx, key, value, header); err != nil {
		return fmt.Errorf("server save: %w", err)
	}

	// a confirmation authorizes one destructive request, not a TTL's worth
	if header != "" {
		m.intents.Consume()
	}

	m.mu.Lock()
	m.lastSynced[key] = serialized
	m.mu.Unlock()
	return nil
}

func (m *Mirror) pushDelete(ctx context.Context, key string) error {
	header := ""
	if it, ok := m.intents.Active(key); ok {
		header = it.HeaderValue()
	}

	if err := m.adapter.Delete(ctx, key, header); err != nil {
		return fmt.Errorf("server delete: %w", err)
	}

	if header != "" {
		m.intents.Consume()
	}

	m.mu.Lock()
	delete(m.lastSynced, key)
	m.mu.Unlock()
	return nil
}
