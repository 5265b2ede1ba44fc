package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
)

// localSQLiteStore is the SQLite-backed implementation of [LocalStore].
type localSQLiteStore struct {
	db     *sql.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewLocalStore opens (creating if needed) the device-local mirror database
// and ensures its schema exists.
func NewLocalStore(ctx context.Context, cfg config.ClientDBView, log *logger.Logger) (LocalStore, error) {
	if err := createLocalDBFileIfNotExists(cfg.DSN); err != nil {
		log.Err(err).Str("func", "NewLocalStore").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file")
	}

	conn, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewLocalStore").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB")
	}

	// ping database
	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewLocalStore").Msg("error connecting database (ping)")
		return nil, err
	}

	if _, err = conn.ExecContext(ctx, mirrorSchema); err != nil {
		log.Err(err).Str("func", "NewLocalStore").Msg("error creating mirror schema")
		return nil, fmt.Errorf("error creating mirror schema: %w", err)
	}
	log.Debug().Str("func", "NewLocalStore").Msg("connected to local database successfully")

	return &localSQLiteStore{
		db:     conn,
		logger: log,
		now:    time.Now,
	}, nil
}

func (s *localSQLiteStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	query, args, err := buildMirrorGetQuery(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	var value []byte
	if err = s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		s.logger.Err(err).Str("func", "*localSQLiteStore.Get").Str("key", key).Msg("error reading mirror entry")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return value, nil
}

func (s *localSQLiteStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	query, args, err := buildMirrorSetQuery(ctx, key, []byte(value), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("error building query: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("func", "*localSQLiteStore.Set").Str("key", key).Msg("error upserting mirror entry")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

func (s *localSQLiteStore) Delete(ctx context.Context, key string) error {
	query, args, err := buildMirrorDeleteQuery(ctx, key)
	if err != nil {
		return fmt.Errorf("error building query: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("func", "*localSQLiteStore.Delete").Str("key", key).Msg("error deleting mirror entry")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

func (s *localSQLiteStore) All(ctx context.Context) (map[string]json.RawMessage, error) {
	query, args, err := buildMirrorAllQuery(ctx)
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Err(err).Str("func", "*localSQLiteStore.All").Msg("error listing mirror entries")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err = rows.Scan(&key, &value); err != nil {
			s.logger.Err(err).Str("func", "*localSQLiteStore.All").Msg("error: scanning error")
			return nil, err
		}
		snapshot[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return snapshot, nil
}

func (s *localSQLiteStore) Close() error {
	return s.db.Close()
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		if dir := filepath.Dir(dbFile); dir != "." {
			if err = os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("error creating DB dir: %w", err)
			}
		}
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	// file already exists
	return nil
}
