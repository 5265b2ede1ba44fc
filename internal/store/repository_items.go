package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// itemRepository is the PostgreSQL-backed implementation of [ItemRepository].
type itemRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewItemRepository constructs an [ItemRepository] backed by the provided
// database connection and logger.
func NewItemRepository(db *DB, logger *logger.Logger) ItemRepository {
	logger.Debug().Msg("creating item repository")
	return &itemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *itemRepository) Append(ctx context.Context, data json.RawMessage, createdMs int64) (int64, error) {
	log := logger.FromContext(ctx)

	var id int64
	if err := r.db.QueryRowContext(ctx, itemAppend, []byte(data), createdMs).Scan(&id); err != nil {
		log.Err(err).Str("func", "*itemRepository.Append").Msg("error appending item")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return id, nil
}

func (r *itemRepository) List(ctx context.Context) ([]models.Item, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, itemList)
	if err != nil {
		log.Err(err).Str("func", "*itemRepository.List").Msg("error listing items")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		var item models.Item
		var payload []byte
		if err = rows.Scan(&item.ID, &payload, &item.CreatedAt); err != nil {
			log.Err(err).Str("func", "*itemRepository.List").Msg("error: scanning error")
			return nil, err
		}
		item.Data = payload
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return items, nil
}
