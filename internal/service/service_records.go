package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/intent"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// recordService is the concrete implementation of RecordService.
type recordService struct {
	items   store.ItemRepository
	clients store.ClientRepository

	trail  *trail
	logger *logger.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewRecordService constructs a RecordService over the given repositories.
func NewRecordService(storages *store.Storages, trail *trail, logger *logger.Logger) RecordService {
	return &recordService{
		items:   storages.ItemRepository,
		clients: storages.ClientRepository,
		trail:   trail,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *recordService) AppendItem(ctx context.Context, data json.RawMessage) (int64, error) {
	log := logger.FromContext(ctx)

	payload, err := validateTransactionPayload(data)
	if err != nil {
		log.Error().Err(err).Msg("invalid transaction payload")
		return 0, err
	}

	id, err := s.items.Append(ctx, data, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("item append failed: %w", err)
	}

	s.trail.record(ctx, models.AuditItemAdd, map[string]any{
		"id":   id,
		"tipo": payload.Tipo,
	})

	return id, nil
}

func (s *recordService) ListItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("item list failed: %w", err)
	}
	return items, nil
}

func (s *recordService) SaveClient(ctx context.Context, client models.Client) (int64, error) {
	log := logger.FromContext(ctx)

	if err := validateClient(client); err != nil {
		log.Error().Err(err).Msg("invalid client data")
		return 0, err
	}

	if client.ID == 0 {
		if client.CreatedAtMs == 0 {
			client.CreatedAtMs = s.now().UnixMilli()
		}
		id, err := s.clients.Create(ctx, client)
		if err != nil {
			return 0, fmt.Errorf("client create failed: %w", err)
		}
		s.trail.record(ctx, models.AuditClientAdd, map[string]any{"id": id, "nombre": client.Nombre})
		return id, nil
	}

	if err := s.clients.Update(ctx, client); err != nil {
		return 0, fmt.Errorf("client update failed: %w", err)
	}
	s.trail.record(ctx, models.AuditClientUpdate, map[string]any{"id": client.ID, "nombre": client.Nombre})

	return client.ID, nil
}

func (s *recordService) DeleteClient(ctx context.Context, id int64, intentHeader string) (bool, error) {
	log := logger.FromContext(ctx)

	if id <= 0 {
		return false, ErrInvalidDataProvided
	}

	if err := intent.ValidateHeader(intentHeader, s.now()); err != nil {
		log.Warn().Int64("id", id).Msg("client delete without valid intent")
		s.trail.record(ctx, models.AuditDeleteBlocked, map[string]any{"client_id": id})
		return false, err
	}

	deleted, err := s.clients.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("client delete failed: %w", err)
	}

	if deleted {
		s.trail.record(ctx, models.AuditClientDelete, map[string]any{"id": id})
		s.trail.notify(ctx, "Cliente eliminado", fmt.Sprintf("El cliente (id %d) fue eliminado.", id))
	}

	return deleted, nil
}

func (s *recordService) ListClients(ctx context.Context) ([]models.Client, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("client list failed: %w", err)
	}
	return clients, nil
}
