package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// auditRepository is the PostgreSQL-backed implementation of
// [AuditRepository].
type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAuditRepository constructs an [AuditRepository] backed by the provided
// database connection and logger.
func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *auditRepository) Append(ctx context.Context, line models.AuditLine) error {
	log := logger.FromContext(ctx)

	details := []byte("{}")
	if line.Details != nil {
		encoded, err := json.Marshal(line.Details)
		if err != nil {
			return fmt.Errorf("error encoding audit details: %w", err)
		}
		details = encoded
	}

	if _, err := r.db.ExecContext(ctx, auditAppend, line.Time, line.IP, line.User, line.Action, details); err != nil {
		log.Err(err).Str("func", "*auditRepository.Append").Str("action", line.Action).Msg("error appending audit line")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}
