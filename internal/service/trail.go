package service

import (
	"context"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/audit"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// trail appends audit lines and delivers security notifications. Both are
// best-effort: a failed append or send is logged and never propagated into
// the request path, so bookkeeping problems cannot break writes.
type trail struct {
	repo     store.AuditRepository
	notifier audit.Notifier
	logger   *logger.Logger
	now      func() time.Time
}

func newTrail(repo store.AuditRepository, notifier audit.Notifier, log *logger.Logger) *trail {
	return &trail{
		repo:     repo,
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

func (t *trail) record(ctx context.Context, action string, details map[string]any) {
	username, _ := utils.GetUsernameFromContext(ctx)
	line := models.AuditLine{
		Time:    t.now(),
		IP:      utils.GetRemoteAddrFromContext(ctx),
		User:    username,
		Action:  action,
		Details: details,
	}

	if err := t.repo.Append(ctx, line); err != nil {
		t.logger.Err(err).Str("action", action).Msg("error appending audit line")
	}
}

func (t *trail) notify(ctx context.Context, subject, body string) {
	if err := t.notifier.NotifySecurityEvent(ctx, subject, body); err != nil {
		t.logger.Err(err).Str("subject", subject).Msg("error sending security notification")
	}
}
