package store

import (
	"context"
	"fmt"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// clientRepository is the PostgreSQL-backed implementation of
// [ClientRepository].
type clientRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewClientRepository constructs a [ClientRepository] backed by the provided
// database connection and logger.
func NewClientRepository(db *DB, logger *logger.Logger) ClientRepository {
	logger.Debug().Msg("creating client repository")
	return &clientRepository{
		db:     db,
		logger: logger,
	}
}

func (r *clientRepository) Create(ctx context.Context, client models.Client) (int64, error) {
	log := logger.FromContext(ctx)

	var id int64
	err := r.db.QueryRowContext(ctx, clientCreate,
		client.Nombre,
		client.ProductoEnlace,
		client.MontoPagado,
		client.DireccionEnvio,
		client.Notas,
		client.CreatedAtMs,
	).Scan(&id)
	if err != nil {
		log.Err(err).Str("func", "*clientRepository.Create").Msg("error creating client")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return id, nil
}

func (r *clientRepository) Update(ctx context.Context, client models.Client) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, clientUpdate,
		client.ID,
		client.Nombre,
		client.ProductoEnlace,
		client.MontoPagado,
		client.DireccionEnvio,
		client.Notas,
	)
	if err != nil {
		log.Err(err).Str("func", "*clientRepository.Update").Int64("id", client.ID).Msg("error updating client")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrClientNotFound
	}

	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, clientDelete, id)
	if err != nil {
		log.Err(err).Str("func", "*clientRepository.Delete").Int64("id", id).Msg("error deleting client")
		return false, fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unexpected DB error: %w", err)
	}

	return affected > 0, nil
}

func (r *clientRepository) List(ctx context.Context) ([]models.Client, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, clientList)
	if err != nil {
		log.Err(err).Str("func", "*clientRepository.List").Msg("error listing clients")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		var client models.Client
		if err = rows.Scan(
			&client.ID,
			&client.Nombre,
			&client.ProductoEnlace,
			&client.MontoPagado,
			&client.DireccionEnvio,
			&client.Notas,
			&client.CreatedAtMs,
			&client.UpdatedAt,
		); err != nil {
			log.Err(err).Str("func", "*clientRepository.List").Msg("error: scanning error")
			return nil, err
		}
		clients = append(clients, client)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return clients, nil
}
