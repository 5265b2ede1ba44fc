// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BisonByte

package service

import (
	"context"
	"path/filepath"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/audit"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/ratelimit"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
)

type Services struct {
	AuthService     AuthService
	LedgerService   LedgerService
	BackupService   BackupService
	RecordService   RecordService
	RecoveryService RecoveryService
}

// NewServices wires the full service layer: shared credential store, the two
// independent rate limiters and the audit trail feeding every service.
func NewServices(ctx context.Context, storages *store.Storages, cfg config.StructuredConfig, notifier audit.Notifier, log *logger.Logger) *Services {
	credentials := seedCredentials(ctx, cfg.App, storages.KVRepository, log)
	trail := newTrail(storages.AuditRepository, notifier, log)

	loginLimiter := ratelimit.NewLimiter(ratelimit.NewLoginConfig(limiterPath(cfg.Storage.RateLimitPath, "login_attempts.json")), log)
	recoveryLimiter := ratelimit.NewLimiter(ratelimit.NewRecoveryConfig(limiterPath(cfg.Storage.RateLimitPath, "recovery_attempts.json")), log)

	ledger := NewLedgerService(storages, trail, log)

	return &Services{
		AuthService:     NewAuthService(credentials, loginLimiter, cfg.App, trail, log),
		LedgerService:   ledger,
		BackupService:   NewBackupService(ledger, cfg.Storage.BackupPath, trail, log),
		RecordService:   NewRecordService(storages, trail, log),
		RecoveryService: NewRecoveryService(storages, credentials, recoveryLimiter, cfg.App, trail, log),
	}
}

// limiterPath joins the configured state directory with a per-flow file name.
// An empty directory keeps the limiter state in memory only.
func limiterPath(dir, file string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, file)
}
