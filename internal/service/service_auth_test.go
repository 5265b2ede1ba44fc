package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/ratelimit"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse battery staple"

func newTestAuthService(t *testing.T) (*authService, *recordingAuditRepo) {
	t.Helper()

	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	trail, auditRepo, _ := newRecordingTrail()
	limiter := ratelimit.NewLimiter(ratelimit.NewLoginConfig(""), logger.Nop())

	svc := &authService{
		credentials:   &credentialStore{hash: hash},
		loginLimiter:  limiter,
		adminUsername: "admin",
		adminName:     "Administrador",
		tokenSignKey:  "test-sign-key",
		tokenIssuer:   "vogue.test",
		tokenDuration: time.Hour,
		trail:         trail,
		logger:        logger.Nop(),
	}
	return svc, auditRepo
}

func ctxWithAddr(addr string) context.Context {
	return context.WithValue(context.Background(), utils.RemoteAddrCtxKey, addr)
}

func TestAuthLogin_Success(t *testing.T) {
	svc, auditRepo := newTestAuthService(t)

	token, err := svc.Login(ctxWithAddr("10.0.0.1"), "admin", testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token.SignedString)
	assert.Equal(t, "admin", token.Username)
	assert.Equal(t, []string{models.AuditLoginSuccess}, auditRepo.actions())
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	svc, auditRepo := newTestAuthService(t)

	_, err := svc.Login(ctxWithAddr("10.0.0.1"), "admin", "nope")
	require.ErrorIs(t, err, ErrWrongPassword)
	assert.Equal(t, []string{models.AuditLoginFailed}, auditRepo.actions())
}

func TestAuthLogin_UnknownUsernameFailsIdentically(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(ctxWithAddr("10.0.0.1"), "intruder", testPassword)
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestAuthLogin_EmptyInputRejected(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(ctxWithAddr("10.0.0.1"), "", "")
	require.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestAuthLogin_FiveFailuresLockTheAddress(t *testing.T) {
	svc, auditRepo := newTestAuthService(t)
	ctx := ctxWithAddr("10.0.0.9")

	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, "admin", "wrong")
		require.ErrorIs(t, err, ErrWrongPassword)
	}

	// sixth attempt, even with correct credentials, is blocked
	_, err := svc.Login(ctx, "admin", testPassword)
	require.ErrorIs(t, err, ErrRateLimited)

	actions := auditRepo.actions()
	assert.Equal(t, models.AuditLoginBlocked, actions[len(actions)-1])

	// a different address is unaffected
	_, err = svc.Login(ctxWithAddr("10.0.0.10"), "admin", testPassword)
	require.NoError(t, err)
}

func TestAuthLogin_SuccessResetsFailureCount(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := ctxWithAddr("10.0.0.2")

	for i := 0; i < 4; i++ {
		_, _ = svc.Login(ctx, "admin", "wrong")
	}
	_, err := svc.Login(ctx, "admin", testPassword)
	require.NoError(t, err)

	// counter was reset, four more failures are allowed again
	for i := 0; i < 4; i++ {
		_, err = svc.Login(ctx, "admin", "wrong")
		require.ErrorIs(t, err, ErrWrongPassword)
	}
}

func TestAuthParseToken_RoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)

	token, err := svc.Login(ctxWithAddr("10.0.0.1"), "admin", testPassword)
	require.NoError(t, err)

	parsed, err := svc.ParseToken(context.Background(), token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, "admin", parsed.Username)
}

func TestAuthParseToken_GarbageRejected(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.ParseToken(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestAuthParseToken_WrongKeyRejected(t *testing.T) {
	svc, _ := newTestAuthService(t)

	foreign, err := utils.GenerateJWTToken("vogue.test", "admin", time.Hour, "other-key")
	require.NoError(t, err)

	_, err = svc.ParseToken(context.Background(), foreign.SignedString)
	require.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestAuthMe(t *testing.T) {
	svc, _ := newTestAuthService(t)

	ctx := context.WithValue(context.Background(), utils.UsernameCtxKey, "admin")
	user, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "Administrador", user.Name)

	_, err = svc.Me(context.Background())
	require.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestAuthLogout_Audited(t *testing.T) {
	svc, auditRepo := newTestAuthService(t)

	require.NoError(t, svc.Logout(ctxWithAddr("10.0.0.1")))
	assert.Equal(t, []string{models.AuditLogout}, auditRepo.actions())
}

func TestSeedCredentials_PrefersStoredHash(t *testing.T) {
	storedHash, err := utils.HashPassword("reset password 123")
	require.NoError(t, err)

	encoded, err := json.Marshal(storedHash)
	require.NoError(t, err)

	kv := &mockKVRepository{
		getFn: func(_ context.Context, key string) (json.RawMessage, error) {
			require.Equal(t, credentialHashKey, key)
			return encoded, nil
		},
	}

	cfg := config.App{AdminPassword: "configured password"}
	creds := seedCredentials(context.Background(), cfg, kv, logger.Nop())

	assert.True(t, creds.Verify("reset password 123"))
	assert.False(t, creds.Verify("configured password"))
}

func TestSeedCredentials_FallsBackToConfiguredPassword(t *testing.T) {
	kv := &mockKVRepository{
		getFn: func(context.Context, string) (json.RawMessage, error) {
			return nil, errStorage
		},
	}

	creds := seedCredentials(context.Background(), config.App{AdminPassword: "configured password"}, kv, logger.Nop())
	assert.True(t, creds.Verify("configured password"))
}
