package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

const (
	// backupFilePrefix names every snapshot file so rotation never touches
	// anything else living in the backup directory.
	backupFilePrefix = "vogue-backup-"

	// backupRetention is how long a snapshot file is kept before rotation
	// removes it.
	backupRetention = 90 * 24 * time.Hour
)

// backupService is the concrete implementation of BackupService. It writes
// the full export snapshot to a timestamped JSON file and rotates out old
// snapshots on every run.
type backupService struct {
	ledger LedgerService
	dir    string

	trail  *trail
	logger *logger.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewBackupService constructs a BackupService writing into dir. An empty dir
// disables the endpoint.
func NewBackupService(ledger LedgerService, dir string, trail *trail, logger *logger.Logger) BackupService {
	return &backupService{
		ledger: ledger,
		dir:    dir,
		trail:  trail,
		logger: logger,
		now:    time.Now,
	}
}

func (s *backupService) Backup(ctx context.Context) (models.BackupResponse, error) {
	log := logger.FromContext(ctx)

	if s.dir == "" {
		return models.BackupResponse{}, ErrBackupsDisabled
	}

	export, err := s.ledger.Export(ctx)
	if err != nil {
		return models.BackupResponse{}, fmt.Errorf("backup export failed: %w", err)
	}

	if err = os.MkdirAll(s.dir, 0o700); err != nil {
		return models.BackupResponse{}, fmt.Errorf("backup dir failed: %w", err)
	}

	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return models.BackupResponse{}, fmt.Errorf("backup encode failed: %w", err)
	}

	name := backupFilePrefix + s.now().Format("2006-01-02_15-04-05") + ".json"
	if err = os.WriteFile(filepath.Join(s.dir, name), body, 0o600); err != nil {
		return models.BackupResponse{}, fmt.Errorf("backup write failed: %w", err)
	}

	s.rotate(ctx)

	counts := models.BackupCounts{
		KV:      len(export.KV),
		Items:   len(export.Items),
		Clients: len(export.Clients),
	}
	log.Info().Str("file", name).Int("kv", counts.KV).Int("items", counts.Items).Int("clients", counts.Clients).Msg("backup written")
	s.trail.record(ctx, models.AuditBackup, map[string]any{
		"file":    name,
		"kv":      counts.KV,
		"items":   counts.Items,
		"clients": counts.Clients,
	})

	return models.BackupResponse{OK: true, File: name, Counts: counts}, nil
}

// rotate removes snapshot files older than the retention window. Rotation is
// best-effort: a failure is logged and never fails the backup that triggered
// it.
func (s *backupService) rotate(ctx context.Context) {
	log := logger.FromContext(ctx)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Err(err).Msg("error listing backup dir for rotation")
		return
	}

	cutoff := s.now().Add(-backupRetention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), backupFilePrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err = os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Err(err).Str("file", entry.Name()).Msg("error removing expired backup")
			continue
		}
		log.Debug().Str("file", entry.Name()).Msg("expired backup removed")
	}
}
