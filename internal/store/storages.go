// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BisonByte

package store

import (
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
)

// NewStorages wires every server-side repository to the shared database
// connection.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	log.Debug().Msg("creating storages")
	return &Storages{
		KVRepository:         NewKVRepository(db, log),
		ItemRepository:       NewItemRepository(db, log),
		ClientRepository:     NewClientRepository(db, log),
		ResetTokenRepository: NewResetTokenRepository(db, log),
		AuditRepository:      NewAuditRepository(db, log),
	}
}
