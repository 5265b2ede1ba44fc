package bootstrap

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// ── test doubles ─────────────────────────────────────────────────────────────

type fakeLocalStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeLocalStore() *fakeLocalStore {
	return &fakeLocalStore{data: make(map[string]string)}
}

func (s *fakeLocalStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return json.RawMessage(v), nil
}

func (s *fakeLocalStore) Set(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = string(value)
	return nil
}

func (s *fakeLocalStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *fakeLocalStore) All(_ context.Context) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

func (s *fakeLocalStore) Close() error { return nil }

type fakeAdapter struct {
	token string

	loginFunc  func(ctx context.Context, username, password string) (string, error)
	meFunc     func(ctx context.Context) error
	exportFunc func(ctx context.Context) (models.Export, error)

	loginCalls int
}

func (a *fakeAdapter) SetToken(token string) { a.token = token }
func (a *fakeAdapter) Token() string         { return a.token }

func (a *fakeAdapter) Login(ctx context.Context, username, password string) (string, error) {
	a.loginCalls++
	if a.loginFunc != nil {
		return a.loginFunc(ctx, username, password)
	}
	a.token = "fresh-token"
	return "fresh-token", nil
}

func (a *fakeAdapter) Me(ctx context.Context) error {
	if a.meFunc != nil {
		return a.meFunc(ctx)
	}
	return nil
}

func (a *fakeAdapter) Export(ctx context.Context) (models.Export, error) {
	if a.exportFunc != nil {
		return a.exportFunc(ctx)
	}
	return models.Export{}, nil
}

func (a *fakeAdapter) Save(context.Context, string, json.RawMessage, string) error { return nil }
func (a *fakeAdapter) Delete(context.Context, string, string) error                { return nil }
func (a *fakeAdapter) AppendItem(context.Context, json.RawMessage) (int64, error)  { return 0, nil }

type fakeMarker struct {
	mu     sync.Mutex
	synced map[string]string
}

func newFakeMarker() *fakeMarker {
	return &fakeMarker{synced: make(map[string]string)}
}

func (m *fakeMarker) MarkSynced(key string, value json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced[key] = string(value)
}

type fakeWorker struct {
	runCount int
}

func (w *fakeWorker) Run() { w.runCount++ }

func newTestOrchestrator(local *fakeLocalStore, srv *fakeAdapter) (*Orchestrator, *fakeMarker, *fakeWorker) {
	marker := newFakeMarker()
	worker := &fakeWorker{}
	app := config.ClientApp{Username: "admin", Password: "secret"}
	o := New(local, srv, marker, worker, app, logger.NewLogger("test"))
	return o, marker, worker
}

// ── hydration ────────────────────────────────────────────────────────────────

func TestRun_HydratesEmptyLocalKeys(t *testing.T) {
	local := newFakeLocalStore()
	serverClients := `[{"id":1,"nombre":"Ana"},{"id":2,"nombre":"Luis"}]`
	srv := &fakeAdapter{
		exportFunc: func(context.Context) (models.Export, error) {
			return models.Export{
				ExportedAt: 1700000000000,
				KV: map[string]json.RawMessage{
					models.KeyClients: json.RawMessage(serverClients),
				},
			}, nil
		},
	}

	o, marker, _ := newTestOrchestrator(local, srv)
	require.NoError(t, o.Run(context.Background()))

	got, err := local.Get(context.Background(), models.KeyClients)
	require.NoError(t, err)
	assert.JSONEq(t, serverClients, string(got))
	assert.Equal(t, serverClients, marker.synced[models.KeyClients])
}

func TestRun_NeverOverwritesNonEmptyLocal(t *testing.T) {
	local := newFakeLocalStore()
	localClients := `[{"id":9,"nombre":"Marta"}]`
	require.NoError(t, local.Set(context.Background(), models.KeyClients, json.RawMessage(localClients)))

	srv := &fakeAdapter{
		exportFunc: func(context.Context) (models.Export, error) {
			return models.Export{KV: map[string]json.RawMessage{
				models.KeyClients: json.RawMessage(`[{"id":1,"nombre":"Ana"}]`),
			}}, nil
		},
	}

	o, marker, _ := newTestOrchestrator(local, srv)
	require.NoError(t, o.Run(context.Background()))

	got, err := local.Get(context.Background(), models.KeyClients)
	require.NoError(t, err)
	assert.JSONEq(t, localClients, string(got))

	// the diverged key is left for the flush path, not marked synced
	_, marked := marker.synced[models.KeyClients]
	assert.False(t, marked)
}

func TestRun_PlaceholderLocalValuesCountAsEmpty(t *testing.T) {
	ctx := context.Background()
	serverValue := `[{"id":1}]`

	for _, placeholder := range []string{"", `""`, "null", "[]", "{}"} {
		local := newFakeLocalStore()
		require.NoError(t, local.Set(ctx, models.KeyTransactions, json.RawMessage(placeholder)))

		srv := &fakeAdapter{
			exportFunc: func(context.Context) (models.Export, error) {
				return models.Export{KV: map[string]json.RawMessage{
					models.KeyTransactions: json.RawMessage(serverValue),
				}}, nil
			},
		}

		o, _, _ := newTestOrchestrator(local, srv)
		require.NoError(t, o.Run(ctx))

		got, err := local.Get(ctx, models.KeyTransactions)
		require.NoError(t, err)
		assert.JSONEq(t, serverValue, string(got), "placeholder %q should be overwritten", placeholder)
	}
}

func TestRun_SkipsExcludedAndEmptyServerKeys(t *testing.T) {
	local := newFakeLocalStore()
	srv := &fakeAdapter{
		exportFunc: func(context.Context) (models.Export, error) {
			return models.Export{KV: map[string]json.RawMessage{
				models.KeySession: json.RawMessage(`{"activa":true}`),
				models.KeyToken:   json.RawMessage(`"leaked"`),
				"vogue_notas":     json.RawMessage(`[]`),
				models.KeyClients: json.RawMessage(`[{"id":1}]`),
			}}, nil
		},
	}

	o, _, _ := newTestOrchestrator(local, srv)
	require.NoError(t, o.Run(context.Background()))

	ctx := context.Background()
	_, err := local.Get(ctx, models.KeySession)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	_, err = local.Get(ctx, "vogue_notas")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)

	_, err = local.Get(ctx, models.KeyClients)
	assert.NoError(t, err)
}

func TestRun_MarksIdenticalValuesSynced(t *testing.T) {
	local := newFakeLocalStore()
	value := `[{"id":1,"nombre":"Ana"}]`
	require.NoError(t, local.Set(context.Background(), models.KeyClients, json.RawMessage(value)))

	srv := &fakeAdapter{
		exportFunc: func(context.Context) (models.Export, error) {
			return models.Export{KV: map[string]json.RawMessage{
				models.KeyClients: json.RawMessage(value),
			}}, nil
		},
	}

	o, marker, _ := newTestOrchestrator(local, srv)
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, value, marker.synced[models.KeyClients])
}

// ── degraded startup ─────────────────────────────────────────────────────────

func TestRun_FailedExportDegradesToOffline(t *testing.T) {
	local := newFakeLocalStore()
	require.NoError(t, local.Set(context.Background(), models.KeyClients, json.RawMessage(`[{"id":9}]`)))

	srv := &fakeAdapter{
		exportFunc: func(context.Context) (models.Export, error) {
			return models.Export{}, assert.AnError
		},
	}

	o, _, worker := newTestOrchestrator(local, srv)
	require.NoError(t, o.Run(context.Background()))

	// workers started and readiness signalled despite the failed pull
	assert.Equal(t, 1, worker.runCount)
	select {
	case <-o.Ready():
	default:
		t.Fatal("expected Ready to be closed")
	}
}

func TestRun_FailedLoginDegradesToOffline(t *testing.T) {
	local := newFakeLocalStore()
	srv := &fakeAdapter{
		loginFunc: func(context.Context, string, string) (string, error) {
			return "", assert.AnError
		},
	}

	o, _, worker := newTestOrchestrator(local, srv)
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, 1, worker.runCount)
	select {
	case <-o.Ready():
	default:
		t.Fatal("expected Ready to be closed")
	}
}

// ── session handling ─────────────────────────────────────────────────────────

func TestEnsureSession_ReusesStoredToken(t *testing.T) {
	local := newFakeLocalStore()
	require.NoError(t, local.Set(context.Background(), models.KeyToken, json.RawMessage(`"stored-token"`)))

	srv := &fakeAdapter{}
	o, _, _ := newTestOrchestrator(local, srv)
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, "stored-token", srv.Token())
	assert.Equal(t, 0, srv.loginCalls)
}

func TestEnsureSession_LogsInWhenStoredTokenStale(t *testing.T) {
	local := newFakeLocalStore()
	require.NoError(t, local.Set(context.Background(), models.KeyToken, json.RawMessage(`"stale-token"`)))

	srv := &fakeAdapter{
		meFunc: func(context.Context) error { return assert.AnError },
	}
	o, _, _ := newTestOrchestrator(local, srv)
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, 1, srv.loginCalls)
	assert.Equal(t, "fresh-token", srv.Token())

	// the new token is persisted for the next start
	raw, err := local.Get(context.Background(), models.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, `"fresh-token"`, string(raw))
}

// ── empty-value classification ───────────────────────────────────────────────

func TestIsEmptyValue(t *testing.T) {
	empty := []string{"", `""`, "null", "[]", "{}", " [] "}
	for _, v := range empty {
		assert.True(t, isEmptyValue(json.RawMessage(v)), "%q should be empty", v)
	}

	nonEmpty := []string{`[{"id":1}]`, `{"a":1}`, `"hola"`, "0", "false"}
	for _, v := range nonEmpty {
		assert.False(t, isEmptyValue(json.RawMessage(v)), "%q should not be empty", v)
	}
}
