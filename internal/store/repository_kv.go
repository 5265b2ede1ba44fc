package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
)

// kvRepository is the PostgreSQL-backed implementation of [KVRepository].
//
// Values are stored as JSON text in the kv_store table. Per-key upserts are
// single statements, so concurrent devices writing the same key resolve to
// last-write-wins without partial values ever being visible.
type kvRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewKVRepository constructs a [KVRepository] backed by the provided
// database connection and logger.
func NewKVRepository(db *DB, logger *logger.Logger) KVRepository {
	logger.Debug().Msg("creating kv repository")
	return &kvRepository{
		db:     db,
		logger: logger,
	}
}

func (r *kvRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	var value []byte
	if err := r.db.QueryRowContext(ctx, kvGet, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		log.Err(err).Str("func", "*kvRepository.Get").Str("key", key).Msg("error reading kv entry")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return value, nil
}

func (r *kvRepository) Set(ctx context.Context, key string, value json.RawMessage) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, kvSet, key, []byte(value)); err != nil {
		log.Err(err).Str("func", "*kvRepository.Set").Str("key", key).Msg("error upserting kv entry")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

func (r *kvRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, kvDelete, key); err != nil {
		log.Err(err).Str("func", "*kvRepository.Delete").Str("key", key).Msg("error deleting kv entry")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

func (r *kvRepository) All(ctx context.Context) (map[string]json.RawMessage, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, kvAll)
	if err != nil {
		log.Err(err).Str("func", "*kvRepository.All").Msg("error listing kv entries")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err = rows.Scan(&key, &value); err != nil {
			log.Err(err).Str("func", "*kvRepository.All").Msg("error: scanning error")
			return nil, err
		}
		snapshot[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return snapshot, nil
}
