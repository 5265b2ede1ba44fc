package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// ─────────────────────────────────────────────
// Mock: store.KVRepository
// ─────────────────────────────────────────────

type mockKVRepository struct {
	getFn    func(ctx context.Context, key string) (json.RawMessage, error)
	setFn    func(ctx context.Context, key string, value json.RawMessage) error
	deleteFn func(ctx context.Context, key string) error
	allFn    func(ctx context.Context) (map[string]json.RawMessage, error)
}

func (m *mockKVRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, errors.New("not configured")
}

func (m *mockKVRepository) Set(ctx context.Context, key string, value json.RawMessage) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockKVRepository) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockKVRepository) All(ctx context.Context) (map[string]json.RawMessage, error) {
	if m.allFn != nil {
		return m.allFn(ctx)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.ItemRepository
// ─────────────────────────────────────────────

type mockItemRepository struct {
	appendFn func(ctx context.Context, data json.RawMessage, createdMs int64) (int64, error)
	listFn   func(ctx context.Context) ([]models.Item, error)
}

func (m *mockItemRepository) Append(ctx context.Context, data json.RawMessage, createdMs int64) (int64, error) {
	if m.appendFn != nil {
		return m.appendFn(ctx, data, createdMs)
	}
	return 1, nil
}

func (m *mockItemRepository) List(ctx context.Context) ([]models.Item, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.ClientRepository
// ─────────────────────────────────────────────

type mockClientRepository struct {
	createFn func(ctx context.Context, client models.Client) (int64, error)
	updateFn func(ctx context.Context, client models.Client) error
	deleteFn func(ctx context.Context, id int64) (bool, error)
	listFn   func(ctx context.Context) ([]models.Client, error)
}

func (m *mockClientRepository) Create(ctx context.Context, client models.Client) (int64, error) {
	if m.createFn != nil {
		return m.createFn(ctx, client)
	}
	return 1, nil
}

func (m *mockClientRepository) Update(ctx context.Context, client models.Client) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, client)
	}
	return nil
}

func (m *mockClientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

func (m *mockClientRepository) List(ctx context.Context) ([]models.Client, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.ResetTokenRepository
// ─────────────────────────────────────────────

type mockResetTokenRepository struct {
	createFn  func(ctx context.Context, token, username string, ttlSeconds int64) error
	consumeFn func(ctx context.Context, token string) (string, error)
}

func (m *mockResetTokenRepository) Create(ctx context.Context, token, username string, ttlSeconds int64) error {
	if m.createFn != nil {
		return m.createFn(ctx, token, username, ttlSeconds)
	}
	return nil
}

func (m *mockResetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, token)
	}
	return "", errors.New("not configured")
}

// ─────────────────────────────────────────────
// Recording audit repository + notifier
// ─────────────────────────────────────────────

type recordingAuditRepo struct {
	mu    sync.Mutex
	lines []models.AuditLine
}

func (r *recordingAuditRepo) Append(_ context.Context, line models.AuditLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	return nil
}

func (r *recordingAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.lines))
	for _, line := range r.lines {
		actions = append(actions, line.Action)
	}
	return actions
}

type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string
}

func (n *recordingNotifier) NotifySecurityEvent(_ context.Context, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return nil
}

func newRecordingTrail() (*trail, *recordingAuditRepo, *recordingNotifier) {
	repo := &recordingAuditRepo{}
	notifier := &recordingNotifier{}
	return newTrail(repo, notifier, logger.Nop()), repo, notifier
}

var errStorage = errors.New("storage error")
