package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/intent"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Unix(1700000000, 0)

func newRawLedgerService(kv *mockKVRepository, items *mockItemRepository, clients *mockClientRepository) (*ledgerService, *recordingAuditRepo, *recordingNotifier) {
	trail, auditRepo, notifier := newRecordingTrail()
	trail.now = func() time.Time { return testNow }

	svc := &ledgerService{
		kv:      kv,
		items:   items,
		clients: clients,
		trail:   trail,
		logger:  logger.Nop(),
		now:     func() time.Time { return testNow },
	}
	return svc, auditRepo, notifier
}

func freshIntentHeader() string {
	return strconv.FormatInt(testNow.UnixMilli(), 10)
}

func staleIntentHeader() string {
	return strconv.FormatInt(testNow.Add(-10*time.Minute).UnixMilli(), 10)
}

// ─────────────────────────────────────────────
// Save
// ─────────────────────────────────────────────

func TestLedgerSave_PlainKeyDelegatesWithoutAudit(t *testing.T) {
	var gotKey string
	var gotValue json.RawMessage
	kv := &mockKVRepository{
		setFn: func(_ context.Context, key string, value json.RawMessage) error {
			gotKey, gotValue = key, value
			return nil
		},
	}
	svc, auditRepo, notifier := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Save(context.Background(), "vogue_prefs", json.RawMessage(`{"theme":"dark"}`), "")
	require.NoError(t, err)

	assert.Equal(t, "vogue_prefs", gotKey)
	assert.JSONEq(t, `{"theme":"dark"}`, string(gotValue))
	assert.Empty(t, auditRepo.actions())
	assert.Empty(t, notifier.subjects)
}

func TestLedgerSave_RejectsInvalidInput(t *testing.T) {
	svc, _, _ := newRawLedgerService(&mockKVRepository{}, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Save(context.Background(), "", json.RawMessage(`{}`), "")
	require.ErrorIs(t, err, ErrInvalidDataProvided)

	err = svc.Save(context.Background(), "k", json.RawMessage(`{not json`), "")
	require.ErrorIs(t, err, ErrInvalidDataProvided)

	err = svc.Save(context.Background(), credentialHashKey, json.RawMessage(`"x"`), "")
	require.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestLedgerSave_UpdateWithoutDeletionsNeedsNoIntent(t *testing.T) {
	stored := json.RawMessage(`[{"id":1,"nombre":"Ana","monto_pagado":100}]`)
	var saved json.RawMessage
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return stored, nil },
		setFn: func(_ context.Context, _ string, value json.RawMessage) error {
			saved = value
			return nil
		},
	}
	svc, auditRepo, notifier := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	incoming := json.RawMessage(`[{"id":1,"nombre":"Ana","monto_pagado":250}]`)
	err := svc.Save(context.Background(), models.KeyClients, incoming, "")
	require.NoError(t, err)

	assert.NotNil(t, saved)
	require.Equal(t, []string{models.AuditKVSave}, auditRepo.actions())
	require.Len(t, notifier.bodies, 1)
	assert.Contains(t, notifier.bodies[0], "monto_pagado")
}

func TestLedgerSave_DeletionWithoutIntentRejected(t *testing.T) {
	stored := json.RawMessage(`[{"id":1,"nombre":"Ana"},{"id":2,"nombre":"Luis"}]`)
	setCalled := false
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return stored, nil },
		setFn: func(context.Context, string, json.RawMessage) error {
			setCalled = true
			return nil
		},
	}
	svc, auditRepo, _ := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	incoming := json.RawMessage(`[{"id":1,"nombre":"Ana"}]`)
	err := svc.Save(context.Background(), models.KeyClients, incoming, "")

	require.ErrorIs(t, err, intent.ErrIntentRequired)
	assert.False(t, setCalled, "rejected save must not mutate the store")
	assert.Equal(t, []string{models.AuditDeleteBlocked}, auditRepo.actions())
}

func TestLedgerSave_DeletionWithFreshIntentAccepted(t *testing.T) {
	stored := json.RawMessage(`[{"id":1,"nombre":"Ana"},{"id":2,"nombre":"Luis"}]`)
	setCalled := false
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return stored, nil },
		setFn: func(context.Context, string, json.RawMessage) error {
			setCalled = true
			return nil
		},
	}
	svc, auditRepo, notifier := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	incoming := json.RawMessage(`[{"id":1,"nombre":"Ana"}]`)
	err := svc.Save(context.Background(), models.KeyClients, incoming, freshIntentHeader())

	require.NoError(t, err)
	assert.True(t, setCalled)
	assert.Equal(t, []string{models.AuditKVSave}, auditRepo.actions())
	require.Len(t, notifier.bodies, 1)
	assert.Contains(t, notifier.bodies[0], "Luis")
}

func TestLedgerSave_StaleIntentRejectedLikeAbsence(t *testing.T) {
	stored := json.RawMessage(`[{"id":1,"nombre":"Ana"}]`)
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return stored, nil },
	}
	svc, auditRepo, _ := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Save(context.Background(), models.KeyClients, json.RawMessage(`[]`), staleIntentHeader())

	require.ErrorIs(t, err, intent.ErrIntentRequired)
	assert.Equal(t, []string{models.AuditDeleteBlocked}, auditRepo.actions())
}

func TestLedgerSave_FirstWriteOfProtectedKey(t *testing.T) {
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return nil, store.ErrKeyNotFound },
		setFn: func(context.Context, string, json.RawMessage) error { return nil },
	}
	svc, auditRepo, _ := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Save(context.Background(), models.KeyTransactions, json.RawMessage(`[{"id":1,"tipo":"venta"}]`), "")
	require.NoError(t, err)
	assert.Equal(t, []string{models.AuditKVSave}, auditRepo.actions())
}

// ─────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────

func TestLedgerDelete_AlwaysRequiresIntent(t *testing.T) {
	deleteCalled := false
	kv := &mockKVRepository{
		deleteFn: func(context.Context, string) error {
			deleteCalled = true
			return nil
		},
	}
	svc, auditRepo, _ := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Delete(context.Background(), "vogue_prefs", "")
	require.ErrorIs(t, err, intent.ErrIntentRequired)
	assert.False(t, deleteCalled)
	assert.Equal(t, []string{models.AuditDeleteBlocked}, auditRepo.actions())
}

func TestLedgerDelete_FreshIntentDeletesAndAudits(t *testing.T) {
	kv := &mockKVRepository{
		deleteFn: func(context.Context, string) error { return nil },
	}
	svc, auditRepo, notifier := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Delete(context.Background(), models.KeyClients, freshIntentHeader())
	require.NoError(t, err)
	assert.Equal(t, []string{models.AuditKVDelete}, auditRepo.actions())
	require.Len(t, notifier.subjects, 1)
	assert.Contains(t, notifier.subjects[0], models.KeyClients)
}

// ─────────────────────────────────────────────
// Export / Import
// ─────────────────────────────────────────────

func TestLedgerExport_FiltersInternalKeys(t *testing.T) {
	kv := &mockKVRepository{
		allFn: func(context.Context) (map[string]json.RawMessage, error) {
			return map[string]json.RawMessage{
				models.KeyClients: json.RawMessage(`[]`),
				models.KeySession: json.RawMessage(`{"user":"admin"}`),
				models.KeyToken:   json.RawMessage(`"jwt"`),
				credentialHashKey: json.RawMessage(`"$2a$10$hash"`),
				"vogue_prefs":     json.RawMessage(`{}`),
			}, nil
		},
	}
	svc, _, _ := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	export, err := svc.Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testNow.UnixMilli(), export.ExportedAt)
	assert.Contains(t, export.KV, models.KeyClients)
	assert.Contains(t, export.KV, "vogue_prefs")
	assert.NotContains(t, export.KV, models.KeySession)
	assert.NotContains(t, export.KV, models.KeyToken)
	assert.NotContains(t, export.KV, credentialHashKey)
}

func TestLedgerImport_SkipsExcludedKeysAndAppendsItems(t *testing.T) {
	savedKeys := make(map[string]bool)
	kv := &mockKVRepository{
		setFn: func(_ context.Context, key string, _ json.RawMessage) error {
			savedKeys[key] = true
			return nil
		},
	}
	var appended int
	items := &mockItemRepository{
		appendFn: func(context.Context, json.RawMessage, int64) (int64, error) {
			appended++
			return int64(appended), nil
		},
	}
	svc, auditRepo, _ := newRawLedgerService(kv, items, &mockClientRepository{})

	err := svc.Import(context.Background(), models.ImportRequest{
		KV: map[string]json.RawMessage{
			models.KeyClients: json.RawMessage(`[]`),
			models.KeySession: json.RawMessage(`{}`),
			"vogue_prefs":     json.RawMessage(`{}`),
		},
		Items: []models.Item{
			{Data: json.RawMessage(`{"tipo":"venta"}`), CreatedAt: 1700000000000},
			{Data: json.RawMessage(`{"tipo":"gasto"}`)},
		},
	}, "")
	require.NoError(t, err)

	assert.True(t, savedKeys[models.KeyClients])
	assert.True(t, savedKeys["vogue_prefs"])
	assert.False(t, savedKeys[models.KeySession], "session keys never import")
	assert.Equal(t, 2, appended)
	assert.Equal(t, []string{models.AuditKVSave, models.AuditImport}, auditRepo.actions())
}

func TestLedgerImport_ShrinkingProtectedKeyNeedsIntent(t *testing.T) {
	stored := json.RawMessage(`[{"id":1,"nombre":"Ana"},{"id":2,"nombre":"Luis"}]`)
	setCalled := false
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return stored, nil },
		setFn: func(context.Context, string, json.RawMessage) error {
			setCalled = true
			return nil
		},
	}
	svc, auditRepo, _ := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Import(context.Background(), models.ImportRequest{
		KV: map[string]json.RawMessage{
			models.KeyClients: json.RawMessage(`[{"id":1,"nombre":"Ana"}]`),
		},
	}, "")

	require.ErrorIs(t, err, intent.ErrIntentRequired)
	assert.False(t, setCalled, "blocked import must not mutate the store")
	assert.Equal(t, []string{models.AuditDeleteBlocked}, auditRepo.actions())
}

func TestLedgerImport_ShrinkingProtectedKeyWithFreshIntent(t *testing.T) {
	stored := json.RawMessage(`[{"id":1,"nombre":"Ana"},{"id":2,"nombre":"Luis"}]`)
	var saved json.RawMessage
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return stored, nil },
		setFn: func(_ context.Context, _ string, value json.RawMessage) error {
			saved = value
			return nil
		},
	}
	svc, auditRepo, notifier := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Import(context.Background(), models.ImportRequest{
		KV: map[string]json.RawMessage{
			models.KeyClients: json.RawMessage(`[{"id":1,"nombre":"Ana"}]`),
		},
	}, freshIntentHeader())

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"nombre":"Ana"}]`, string(saved))
	assert.Equal(t, []string{models.AuditKVSave, models.AuditImport}, auditRepo.actions())
	require.Len(t, notifier.bodies, 1)
	assert.Contains(t, notifier.bodies[0], "Luis")
}

func TestLedgerImport_EmptyRequestRejected(t *testing.T) {
	svc, _, _ := newRawLedgerService(&mockKVRepository{}, &mockItemRepository{}, &mockClientRepository{})

	err := svc.Import(context.Background(), models.ImportRequest{}, "")
	require.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestLedgerLoad_WrapsStorageErrors(t *testing.T) {
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return nil, errStorage },
	}
	svc, _, _ := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	_, err := svc.Load(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errStorage))
}

func TestLedgerLoad_NotFoundPassesThrough(t *testing.T) {
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) { return nil, store.ErrKeyNotFound },
	}
	svc, _, _ := newRawLedgerService(kv, &mockItemRepository{}, &mockClientRepository{})

	_, err := svc.Load(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrKeyNotFound)
}
