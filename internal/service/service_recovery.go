package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/ratelimit"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// resetTokenTTLSeconds is how long an issued password-reset token stays
// valid.
const resetTokenTTLSeconds = 30 * 60

// minPasswordLength is the shortest password the reset flow accepts.
const minPasswordLength = 8

// recoveryService is the concrete implementation of RecoveryService.
//
// Recovery requests are rate-limited per caller address on a rolling window
// that counts every request, not just failures: the flow itself is the
// resource being protected, since each request produces an email.
type recoveryService struct {
	resetTokens store.ResetTokenRepository
	kv          store.KVRepository
	credentials *credentialStore

	// recoveryLimiter guards the request flow per caller address.
	recoveryLimiter *ratelimit.Limiter

	tokens *utils.TokenGenerator

	adminUsername string
	appURL        string

	trail  *trail
	logger *logger.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewRecoveryService constructs a RecoveryService.
func NewRecoveryService(storages *store.Storages, credentials *credentialStore, recoveryLimiter *ratelimit.Limiter, cfg config.App, trail *trail, logger *logger.Logger) RecoveryService {
	return &recoveryService{
		resetTokens:     storages.ResetTokenRepository,
		kv:              storages.KVRepository,
		credentials:     credentials,
		recoveryLimiter: recoveryLimiter,
		tokens:          utils.NewTokenGenerator(),
		adminUsername:   cfg.AdminUsername,
		appURL:          cfg.AppURL,
		trail:           trail,
		logger:          logger,
		now:             time.Now,
	}
}

// ForgotPassword issues a reset token and mails the reset link. Unknown
// usernames get the exact same outward behavior as known ones, so the
// endpoint cannot be used to probe for accounts.
func (s *recoveryService) ForgotPassword(ctx context.Context, username string) error {
	log := logger.FromContext(ctx)
	addr := utils.GetRemoteAddrFromContext(ctx)

	if username == "" {
		return ErrInvalidDataProvided
	}

	if !s.recoveryLimiter.Check(addr) {
		s.trail.record(ctx, models.AuditResetBlocked, map[string]any{"username": username})
		return ErrRateLimited
	}
	s.recoveryLimiter.RegisterFailure(addr)

	s.trail.record(ctx, models.AuditResetRequest, map[string]any{"username": username})

	if username != s.adminUsername {
		// same response as the happy path, just no token
		return nil
	}

	token := s.tokens.NewToken()
	if err := s.resetTokens.Create(ctx, token, username, resetTokenTTLSeconds); err != nil {
		log.Err(err).Msg("error storing reset token")
		return fmt.Errorf("reset token creation failed: %w", err)
	}

	link := fmt.Sprintf("%s/reset?token=%s", s.appURL, token)
	body := fmt.Sprintf(
		"Se solicitó un restablecimiento de contraseña.\n\nEnlace (válido 30 minutos):\n%s\n\nSi no fuiste tú, ignora este mensaje.",
		link,
	)
	s.trail.notify(ctx, "Restablecer contraseña", body)

	return nil
}

// ResetPassword consumes a reset token and installs the new password. The
// new bcrypt hash replaces the in-memory credentials and is persisted so it
// survives a restart.
func (s *recoveryService) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.FromContext(ctx)

	if token == "" || len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must have at least %d characters", ErrInvalidDataProvided, minPasswordLength)
	}

	username, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrResetTokenInvalid) {
			return ErrTokenIsExpiredOrInvalid
		}
		return fmt.Errorf("reset token consume failed: %w", err)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("password hash failed: %w", err)
	}

	s.credentials.Update(hash)

	encoded, err := json.Marshal(hash)
	if err != nil {
		return fmt.Errorf("password hash encode failed: %w", err)
	}
	if err = s.kv.Set(ctx, credentialHashKey, encoded); err != nil {
		log.Err(err).Msg("error persisting new password hash")
		return fmt.Errorf("password hash persist failed: %w", err)
	}

	s.trail.record(ctx, models.AuditPasswordReset, map[string]any{"username": username})
	s.trail.notify(ctx, "Contraseña restablecida", "La contraseña de la cuenta fue restablecida correctamente.")

	return nil
}
