package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/audit"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/intent"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// ledgerService is the concrete implementation of LedgerService.
//
// Protected collection keys (clients, transactions) get the full treatment on
// every save: the stored snapshot is diffed against the incoming one, writes
// that remove records are gated behind the delete-intent header, and accepted
// changes produce an audit line plus a security notification. Plain keys skip
// all of it.
type ledgerService struct {
	kv      store.KVRepository
	items   store.ItemRepository
	clients store.ClientRepository

	trail  *trail
	logger *logger.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewLedgerService constructs a LedgerService over the given repositories.
func NewLedgerService(storages *store.Storages, trail *trail, logger *logger.Logger) LedgerService {
	return &ledgerService{
		kv:      storages.KVRepository,
		items:   storages.ItemRepository,
		clients: storages.ClientRepository,
		trail:   trail,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *ledgerService) Save(ctx context.Context, key string, value json.RawMessage, intentHeader string) error {
	log := logger.FromContext(ctx)

	if key == "" || len(value) == 0 || !json.Valid(value) {
		log.Error().Str("key", key).Msg("invalid save data provided")
		return ErrInvalidDataProvided
	}
	if key == credentialHashKey {
		return ErrInvalidDataProvided
	}

	if !models.IsProtectedKey(key) {
		if err := s.kv.Set(ctx, key, value); err != nil {
			return fmt.Errorf("kv save failed: %w", err)
		}
		return nil
	}

	changes := s.diffAgainstStored(ctx, key, value)

	if len(changes.Deleted) > 0 {
		if err := intent.ValidateHeader(intentHeader, s.now()); err != nil {
			log.Warn().Str("key", key).Int("deleted", len(changes.Deleted)).Msg("destructive save without valid intent")
			s.trail.record(ctx, models.AuditDeleteBlocked, map[string]any{
				"key":     key,
				"deleted": len(changes.Deleted),
			})
			return err
		}
	}

	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("kv save failed: %w", err)
	}

	details := map[string]any{"key": key}
	if !changes.Empty() {
		summary := audit.Summarize(key, changes)
		details["deleted"] = len(changes.Deleted)
		details["updated"] = len(changes.Updated)
		details["summary"] = summary
		s.trail.notify(ctx, fmt.Sprintf("Cambios en %s", key), summary)
	}
	s.trail.record(ctx, models.AuditKVSave, details)

	return nil
}

// diffAgainstStored compares the incoming snapshot with whatever is stored
// under key. A snapshot that does not decode as a record collection yields an
// empty changeset: the guard only understands record arrays.
func (s *ledgerService) diffAgainstStored(ctx context.Context, key string, value json.RawMessage) audit.ChangeSet {
	var oldRecords []models.Record
	if stored, err := s.kv.Get(ctx, key); err == nil {
		oldRecords, _ = models.DecodeRecords(stored)
	}

	newRecords, err := models.DecodeRecords(value)
	if err != nil {
		return audit.ChangeSet{}
	}

	return audit.Diff(oldRecords, newRecords, audit.TrackedFields(key))
}

func (s *ledgerService) Load(ctx context.Context, key string) (json.RawMessage, error) {
	if key == "" || key == credentialHashKey {
		return nil, ErrInvalidDataProvided
	}

	value, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("kv load failed: %w", err)
	}

	return value, nil
}

func (s *ledgerService) Delete(ctx context.Context, key, intentHeader string) error {
	log := logger.FromContext(ctx)

	if key == "" || key == credentialHashKey {
		return ErrInvalidDataProvided
	}

	// a key delete always removes data, so the guard always applies
	if err := intent.ValidateHeader(intentHeader, s.now()); err != nil {
		log.Warn().Str("key", key).Msg("key delete without valid intent")
		s.trail.record(ctx, models.AuditDeleteBlocked, map[string]any{"key": key})
		return err
	}

	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("kv delete failed: %w", err)
	}

	s.trail.record(ctx, models.AuditKVDelete, map[string]any{"key": key})
	if models.IsProtectedKey(key) {
		s.trail.notify(ctx, fmt.Sprintf("Clave eliminada: %s", key), fmt.Sprintf("La clave %s fue eliminada por completo.", key))
	}

	return nil
}

func (s *ledgerService) Export(ctx context.Context) (models.Export, error) {
	snapshot, err := s.kv.All(ctx)
	if err != nil {
		return models.Export{}, fmt.Errorf("export kv failed: %w", err)
	}

	kv := make(map[string]json.RawMessage, len(snapshot))
	for key, value := range snapshot {
		if models.IsSyncExcludedKey(key) || key == credentialHashKey {
			continue
		}
		kv[key] = value
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return models.Export{}, fmt.Errorf("export items failed: %w", err)
	}

	clients, err := s.clients.List(ctx)
	if err != nil {
		return models.Export{}, fmt.Errorf("export clients failed: %w", err)
	}

	return models.Export{
		ExportedAt: s.now().UnixMilli(),
		KV:         kv,
		Items:      items,
		Clients:    clients,
	}, nil
}

func (s *ledgerService) Import(ctx context.Context, req models.ImportRequest, intentHeader string) error {
	log := logger.FromContext(ctx)

	if len(req.KV) == 0 && len(req.Items) == 0 {
		return ErrInvalidDataProvided
	}

	var kvCount, itemCount int
	for key, value := range req.KV {
		if key == "" || models.IsSyncExcludedKey(key) || key == credentialHashKey {
			continue
		}
		if len(value) == 0 || !json.Valid(value) {
			log.Warn().Str("key", key).Msg("skipping invalid import value")
			continue
		}
		// protected collections go through the guarded save path, so an
		// import that shrinks them is diffed, intent-gated and audited
		if models.IsProtectedKey(key) {
			if err := s.Save(ctx, key, value, intentHeader); err != nil {
				return fmt.Errorf("import kv %s failed: %w", key, err)
			}
			kvCount++
			continue
		}
		if err := s.kv.Set(ctx, key, value); err != nil {
			return fmt.Errorf("import kv failed: %w", err)
		}
		kvCount++
	}

	for _, item := range req.Items {
		if len(item.Data) == 0 || !json.Valid(item.Data) {
			continue
		}
		createdAt := item.CreatedAt
		if createdAt == 0 {
			createdAt = s.now().UnixMilli()
		}
		if _, err := s.items.Append(ctx, item.Data, createdAt); err != nil {
			return fmt.Errorf("import items failed: %w", err)
		}
		itemCount++
	}

	s.trail.record(ctx, models.AuditImport, map[string]any{
		"kv":    kvCount,
		"items": itemCount,
	})

	return nil
}
