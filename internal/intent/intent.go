// Package intent implements the delete-intent token protocol that gates
// destructive writes to the protected collections.
//
// An intent is a short-lived proof that a human explicitly confirmed a
// destructive action. The device records it the moment the operator confirms
// a delete prompt, attaches its timestamp to the destructive request as the
// X-Vogue-Delete-Intent header, and the server refuses any write that would
// actually remove records unless the header is present and fresh.
package intent

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// TTL is how long a recorded intent stays valid. A destructive request
// arriving later than this after the confirmation needs a fresh
// confirmation.
const TTL = 5 * time.Minute

// ErrIntentRequired is returned whenever a destructive write lacks a valid
// intent proof. Expired, malformed and mismatched intents all collapse into
// this one error: the caller must not be able to distinguish them.
var ErrIntentRequired = errors.New("delete intent required")

// Intent is one recorded confirmation: when it happened and which protected
// collection it was inferred to cover ("*" covers any).
type Intent struct {
	TS     time.Time `json:"ts"`
	Target string    `json:"target"`
}

// HeaderValue renders the intent as the wire form carried in the
// X-Vogue-Delete-Intent header: the confirmation time in Unix milliseconds.
func (i Intent) HeaderValue() string {
	return strconv.FormatInt(i.TS.UnixMilli(), 10)
}

// ValidateHeader checks a raw X-Vogue-Delete-Intent header value against the
// server clock. The value must be an integer millisecond timestamp whose age
// is between 0 and TTL inclusive; anything else fails with
// [ErrIntentRequired].
func ValidateHeader(raw string, now time.Time) error {
	if raw == "" {
		return ErrIntentRequired
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed header", ErrIntentRequired)
	}

	age := now.Sub(time.UnixMilli(ms))
	if age < 0 || age > TTL {
		return fmt.Errorf("%w: intent aged %s", ErrIntentRequired, age)
	}

	return nil
}

// Recorder keeps the device-side intent slot. It holds at most one intent at
// a time; recording a new confirmation replaces the previous one, and a
// successful destructive request consumes it. The slot lives in process
// memory only, never in the mirror, so it cannot survive a restart.
type Recorder struct {
	mu   sync.Mutex
	slot *Intent

	now func() time.Time
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record inspects the text of a confirmed destructive prompt. If the text
// matches delete vocabulary the intent is stored with a target inferred from
// the same text, and Record reports true. Prompts without delete vocabulary
// leave the slot untouched.
func (r *Recorder) Record(message string) bool {
	if !matchesDeleteVocabulary(message) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot = &Intent{TS: r.now(), Target: resolveTarget(message)}
	return true
}

// Active returns the currently valid intent for the given protected key.
// The intent must be younger than TTL and its target must be "*" or equal to
// key. An expired intent is dropped from the slot as a side effect.
func (r *Recorder) Active(key string) (Intent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slot == nil {
		return Intent{}, false
	}

	age := r.now().Sub(r.slot.TS)
	if age < 0 || age > TTL {
		r.slot = nil
		return Intent{}, false
	}

	if r.slot.Target != "*" && r.slot.Target != key {
		return Intent{}, false
	}

	return *r.slot, true
}

// Consume clears the slot. Called after the server accepted a destructive
// request so the same confirmation is never reused, even within TTL.
func (r *Recorder) Consume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot = nil
}

// SetNow overrides the recorder's clock. Test hook.
func (r *Recorder) SetNow(now func() time.Time) {
	if now == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// matchesDeleteVocabulary reports whether a prompt text asks about a
// destructive action. The vocabulary mirrors the confirmation prompts the
// frontend shows ("¿borrar...?", "¿eliminar...?").
func matchesDeleteVocabulary(message string) bool {
	if message == "" {
		return false
	}
	text := strings.ToLower(message)
	return strings.Contains(text, "borrar") || strings.Contains(text, "elimin")
}

// resolveTarget infers which protected collection a prompt refers to.
// Unrecognized prompts produce the wildcard target.
func resolveTarget(message string) string {
	text := strings.ToLower(message)
	if strings.Contains(text, "cliente") {
		return models.KeyClients
	}
	if strings.Contains(text, "registro") || strings.Contains(text, "historial") || strings.Contains(text, "transacci") {
		return models.KeyTransactions
	}
	return "*"
}
