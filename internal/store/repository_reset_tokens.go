package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
)

// resetTokenRepository is the PostgreSQL-backed implementation of
// [ResetTokenRepository].
type resetTokenRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewResetTokenRepository constructs a [ResetTokenRepository] backed by the
// provided database connection and logger.
func NewResetTokenRepository(db *DB, logger *logger.Logger) ResetTokenRepository {
	logger.Debug().Msg("creating reset token repository")
	return &resetTokenRepository{
		db:     db,
		logger: logger,
	}
}

func (r *resetTokenRepository) Create(ctx context.Context, token, username string, ttlSeconds int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, resetTokenCreate, token, username, ttlSeconds); err != nil {
		// token is the primary key; a collision means the generator handed out
		// a duplicate and the caller should issue a fresh one
		if postgresError(err) == pgerrcode.UniqueViolation {
			log.Warn().Str("func", "*resetTokenRepository.Create").Msg("reset token collision")
			return fmt.Errorf("reset token collision: %w", err)
		}
		log.Err(err).Str("func", "*resetTokenRepository.Create").Msg("error storing reset token")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

func (r *resetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	log := logger.FromContext(ctx)

	var username string
	if err := r.db.QueryRowContext(ctx, resetTokenConsume, token).Scan(&username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrResetTokenInvalid
		}
		log.Err(err).Str("func", "*resetTokenRepository.Consume").Msg("error consuming reset token")
		return "", fmt.Errorf("unexpected DB error: %w", err)
	}

	return username, nil
}
