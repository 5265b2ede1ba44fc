package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/intent"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRawRecordService(items *mockItemRepository, clients *mockClientRepository) (*recordService, *recordingAuditRepo, *recordingNotifier) {
	trail, auditRepo, notifier := newRecordingTrail()
	trail.now = func() time.Time { return testNow }

	svc := &recordService{
		items:   items,
		clients: clients,
		trail:   trail,
		logger:  logger.Nop(),
		now:     func() time.Time { return testNow },
	}
	return svc, auditRepo, notifier
}

// ─────────────────────────────────────────────
// AppendItem
// ─────────────────────────────────────────────

func TestAppendItem_Success(t *testing.T) {
	var gotCreatedMs int64
	items := &mockItemRepository{
		appendFn: func(_ context.Context, _ json.RawMessage, createdMs int64) (int64, error) {
			gotCreatedMs = createdMs
			return 11, nil
		},
	}
	svc, auditRepo, _ := newRawRecordService(items, &mockClientRepository{})

	id, err := svc.AppendItem(context.Background(), json.RawMessage(`{"tipo":"venta","monto":120.5,"cliente":"Ana"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, testNow.UnixMilli(), gotCreatedMs)
	assert.Equal(t, []string{models.AuditItemAdd}, auditRepo.actions())
}

func TestAppendItem_ValidationFailures(t *testing.T) {
	svc, auditRepo, _ := newRawRecordService(&mockItemRepository{}, &mockClientRepository{})
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "missing tipo", payload: `{"monto":10}`},
		{name: "negative monto", payload: `{"tipo":"venta","monto":-1}`},
		{name: "malformed json", payload: `{"tipo":`},
		{name: "monto not a number", payload: `{"tipo":"venta","monto":"mucho"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AppendItem(ctx, json.RawMessage(tt.payload))
			require.ErrorIs(t, err, ErrInvalidDataProvided)
		})
	}

	assert.Empty(t, auditRepo.actions(), "rejected items must not be audited")
}

func TestAppendItem_ZeroMontoAllowed(t *testing.T) {
	svc, _, _ := newRawRecordService(&mockItemRepository{}, &mockClientRepository{})

	_, err := svc.AppendItem(context.Background(), json.RawMessage(`{"tipo":"nota","monto":0}`))
	require.NoError(t, err)
}

// ─────────────────────────────────────────────
// Clients
// ─────────────────────────────────────────────

func TestSaveClient_CreatesWhenIDZero(t *testing.T) {
	var created models.Client
	clients := &mockClientRepository{
		createFn: func(_ context.Context, c models.Client) (int64, error) {
			created = c
			return 5, nil
		},
	}
	svc, auditRepo, _ := newRawRecordService(&mockItemRepository{}, clients)

	id, err := svc.SaveClient(context.Background(), models.Client{Nombre: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Equal(t, testNow.UnixMilli(), created.CreatedAtMs)
	assert.Equal(t, []string{models.AuditClientAdd}, auditRepo.actions())
}

func TestSaveClient_UpdatesWhenIDSet(t *testing.T) {
	updated := false
	clients := &mockClientRepository{
		updateFn: func(context.Context, models.Client) error {
			updated = true
			return nil
		},
	}
	svc, auditRepo, _ := newRawRecordService(&mockItemRepository{}, clients)

	id, err := svc.SaveClient(context.Background(), models.Client{ID: 7, Nombre: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.True(t, updated)
	assert.Equal(t, []string{models.AuditClientUpdate}, auditRepo.actions())
}

func TestSaveClient_Validation(t *testing.T) {
	svc, _, _ := newRawRecordService(&mockItemRepository{}, &mockClientRepository{})

	_, err := svc.SaveClient(context.Background(), models.Client{})
	require.ErrorIs(t, err, ErrInvalidDataProvided)

	_, err = svc.SaveClient(context.Background(), models.Client{Nombre: "Ana", MontoPagado: -5})
	require.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestDeleteClient_RequiresIntent(t *testing.T) {
	deleteCalled := false
	clients := &mockClientRepository{
		deleteFn: func(context.Context, int64) (bool, error) {
			deleteCalled = true
			return true, nil
		},
	}
	svc, auditRepo, _ := newRawRecordService(&mockItemRepository{}, clients)

	_, err := svc.DeleteClient(context.Background(), 7, "")
	require.ErrorIs(t, err, intent.ErrIntentRequired)
	assert.False(t, deleteCalled)
	assert.Equal(t, []string{models.AuditDeleteBlocked}, auditRepo.actions())
}

func TestDeleteClient_FreshIntentDeletesAndNotifies(t *testing.T) {
	clients := &mockClientRepository{
		deleteFn: func(_ context.Context, id int64) (bool, error) {
			return id == 7, nil
		},
	}
	svc, auditRepo, notifier := newRawRecordService(&mockItemRepository{}, clients)

	deleted, err := svc.DeleteClient(context.Background(), 7, freshIntentHeader())
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{models.AuditClientDelete}, auditRepo.actions())
	require.Len(t, notifier.subjects, 1)
}

func TestDeleteClient_AbsentRowNotAudited(t *testing.T) {
	clients := &mockClientRepository{
		deleteFn: func(context.Context, int64) (bool, error) { return false, nil },
	}
	svc, auditRepo, notifier := newRawRecordService(&mockItemRepository{}, clients)

	deleted, err := svc.DeleteClient(context.Background(), 99, freshIntentHeader())
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, auditRepo.actions())
	assert.Empty(t, notifier.subjects)
}
