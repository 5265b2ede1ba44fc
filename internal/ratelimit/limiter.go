// Package ratelimit implements fixed-window attempt counters with lockout,
// keyed by client address. Two independent limiter instances guard the login
// and password-recovery flows; they persist to separate files so the flows
// never share state.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
)

// Config controls one limiter instance.
type Config struct {
	// Path is the JSON state file. Empty keeps the state in memory only.
	Path string

	// Threshold is the number of failures that triggers a lockout.
	Threshold int

	// Block is how long an address stays locked out once the threshold is
	// reached.
	Block time.Duration

	// Window is an optional rolling window: failures older than the window
	// stop counting toward the threshold. Zero disables windowing (failures
	// accumulate until a success resets them).
	Window time.Duration
}

// NewLoginConfig returns the limiter settings for the login flow:
// 5 failures lock the address out for 15 minutes.
func NewLoginConfig(path string) Config {
	return Config{Path: path, Threshold: 5, Block: 15 * time.Minute}
}

// NewRecoveryConfig returns the limiter settings for the recovery-request
// flow: 3 requests within a rolling 30-minute window lock the address out
// for the same 30 minutes.
func NewRecoveryConfig(path string) Config {
	return Config{Path: path, Threshold: 3, Block: 30 * time.Minute, Window: 30 * time.Minute}
}

type entry struct {
	Fails        int   `json:"fails"`
	WindowStart  int64 `json:"windowStart,omitempty"`
	BlockedUntil int64 `json:"blockedUntil,omitempty"`
}

// Limiter is a persisted, address-keyed failure counter.
//
// All mutating operations are atomic read-modify-write under one mutex, and
// the state file is replaced via write-to-temp-then-rename so a crash during
// persist can never leave a half-written file behind.
type Limiter struct {
	cfg    Config
	logger *logger.Logger

	// now is injectable for tests.
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewLimiter constructs a limiter and loads any previously persisted state.
// A missing or unreadable state file starts the limiter empty rather than
// failing: losing limiter bookkeeping is preferable to refusing to start.
func NewLimiter(cfg Config, log *logger.Logger) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	l.load()
	return l
}

// Check reports whether the address is currently allowed to attempt the
// guarded operation. It performs no bookkeeping of its own.
func (l *Limiter) Check(address string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[address]
	if !ok {
		return true
	}

	return e.BlockedUntil <= l.now().Unix()
}

// RegisterFailure records a failed attempt for the address. Reaching the
// threshold locks the address out for the configured block duration and
// resets the counter, matching the original fixed-window mechanics.
func (l *Limiter) RegisterFailure(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[address]
	if !ok {
		e = &entry{}
		l.entries[address] = e
	}

	// An already blocked address accrues nothing further.
	if e.BlockedUntil > now.Unix() {
		return
	}

	if l.cfg.Window > 0 {
		if e.WindowStart == 0 || now.Sub(time.Unix(e.WindowStart, 0)) > l.cfg.Window {
			e.Fails = 0
			e.WindowStart = now.Unix()
		}
	}

	e.Fails++
	if e.Fails >= l.cfg.Threshold {
		e.BlockedUntil = now.Add(l.cfg.Block).Unix()
		e.Fails = 0
		e.WindowStart = 0
	}

	l.persist()
}

// Reset clears all bookkeeping for the address. Called after a successful
// attempt.
func (l *Limiter) Reset(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[address]; !ok {
		return
	}
	delete(l.entries, address)
	l.persist()
}

func (l *Limiter) load() {
	if l.cfg.Path == "" {
		return
	}

	data, err := os.ReadFile(l.cfg.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn().Err(err).Str("path", l.cfg.Path).Msg("cannot read rate limit state, starting empty")
		}
		return
	}

	var entries map[string]*entry
	if err = json.Unmarshal(data, &entries); err != nil {
		l.logger.Warn().Err(err).Str("path", l.cfg.Path).Msg("corrupt rate limit state, starting empty")
		return
	}
	l.entries = entries
}

// persist writes the state under l.mu via temp file + rename.
func (l *Limiter) persist() {
	if l.cfg.Path == "" {
		return
	}

	payload, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		l.logger.Err(err).Msg("cannot encode rate limit state")
		return
	}

	tmp := l.cfg.Path + ".tmp"
	if dir := filepath.Dir(l.cfg.Path); dir != "." {
		if err = os.MkdirAll(dir, 0o700); err != nil {
			l.logger.Err(err).Str("dir", dir).Msg("cannot create rate limit state dir")
			return
		}
	}
	if err = os.WriteFile(tmp, payload, 0o600); err != nil {
		l.logger.Err(err).Str("path", tmp).Msg("cannot write rate limit state")
		return
	}
	if err = os.Rename(tmp, l.cfg.Path); err != nil {
		l.logger.Err(err).Str("path", l.cfg.Path).Msg("cannot replace rate limit state")
	}
}

// SetNow overrides the limiter's clock. Test hook.
func (l *Limiter) SetNow(now func() time.Time) {
	if now == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *Limiter) String() string {
	return fmt.Sprintf("ratelimit.Limiter{threshold: %d, block: %s, window: %s}", l.cfg.Threshold, l.cfg.Block, l.cfg.Window)
}
