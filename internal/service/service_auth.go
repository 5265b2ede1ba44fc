package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/ratelimit"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/utils"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// credentialHashKey is the reserved kv key persisting the administrator's
// bcrypt hash after a password reset. It never appears in exports or imports.
const credentialHashKey = "vogue_auth"

// credentialStore holds the current administrator password hash. The hash is
// mutable because the recovery flow replaces it at runtime; reads and writes
// go through one RWMutex.
type credentialStore struct {
	mu   sync.RWMutex
	hash string
}

func (c *credentialStore) Verify(password string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.hash == "" {
		return false
	}
	return utils.VerifyPassword(c.hash, password)
}

func (c *credentialStore) Update(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hash = hash
}

// seedCredentials builds the credential store from configuration, preferring
// a hash previously persisted by the recovery flow over the configured seed.
func seedCredentials(ctx context.Context, cfg config.App, kv store.KVRepository, log *logger.Logger) *credentialStore {
	creds := &credentialStore{}

	switch {
	case cfg.AdminPasswordHash != "":
		creds.hash = cfg.AdminPasswordHash
	case cfg.AdminPassword != "":
		hash, err := utils.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Err(err).Msg("error hashing configured admin password")
		} else {
			creds.hash = hash
		}
	}

	if stored, err := kv.Get(ctx, credentialHashKey); err == nil && len(stored) > 2 {
		var hash string
		if err = json.Unmarshal(stored, &hash); err == nil && hash != "" {
			creds.hash = hash
		}
	}

	return creds
}

// authService is the concrete implementation of AuthService for the single
// administrator account the system serves.
type authService struct {
	credentials *credentialStore

	// loginLimiter guards the login flow per caller address.
	loginLimiter *ratelimit.Limiter

	adminUsername string
	adminName     string

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	trail  *trail
	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given credential
// store and login limiter, populated with token parameters from cfg.
func NewAuthService(credentials *credentialStore, loginLimiter *ratelimit.Limiter, cfg config.App, trail *trail, logger *logger.Logger) AuthService {
	return &authService{
		credentials:   credentials,
		loginLimiter:  loginLimiter,
		adminUsername: cfg.AdminUsername,
		adminName:     cfg.AdminName,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		trail:         trail,
		logger:        logger,
	}
}

// Login authenticates the operator.
//
// The caller address (from the request context) is checked against the login
// limiter before credentials are inspected; a locked-out address never
// reaches the bcrypt comparison. Every failed attempt is registered, every
// outcome is audited.
func (a *authService) Login(ctx context.Context, username, password string) (models.Token, error) {
	log := logger.FromContext(ctx)
	addr := utils.GetRemoteAddrFromContext(ctx)

	if username == "" || password == "" {
		log.Error().Msg("invalid login data provided")
		return models.Token{}, ErrInvalidDataProvided
	}

	if !a.loginLimiter.Check(addr) {
		a.trail.record(ctx, models.AuditLoginBlocked, map[string]any{"username": username})
		return models.Token{}, ErrRateLimited
	}

	if username != a.adminUsername || !a.credentials.Verify(password) {
		a.loginLimiter.RegisterFailure(addr)
		log.Warn().Str("username", username).Msg("wrong credentials")
		a.trail.record(ctx, models.AuditLoginFailed, map[string]any{"username": username})
		return models.Token{}, ErrWrongPassword
	}

	a.loginLimiter.Reset(addr)

	token, err := utils.GenerateJWTToken(a.tokenIssuer, username, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		log.Err(err).Msg("error generating session token")
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	a.trail.record(ctx, models.AuditLoginSuccess, nil)
	return token, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.trail.record(ctx, models.AuditLogout, nil)
	return nil
}

// ParseToken validates a raw JWT string. Any validation failure (expired,
// wrong issuer, malformed) is normalised to ErrTokenIsExpiredOrInvalid so
// callers never inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

func (a *authService) Me(ctx context.Context) (models.User, error) {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username != a.adminUsername {
		return models.User{}, ErrTokenIsExpiredOrInvalid
	}

	return models.User{Username: a.adminUsername, Name: a.adminName}, nil
}
