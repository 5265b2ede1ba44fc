// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BisonByte

// Package bootstrap brings the device agent online.
//
// The orchestrator establishes a server session, hydrates the local mirror
// from the server snapshot, starts the background sync workers, and then
// signals readiness. Hydration is deliberately one-sided: a server value only
// lands locally when the local slot is empty, so device data written while
// offline is never clobbered by the pull. A failed pull degrades the agent to
// offline operation instead of aborting startup.
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/adapter"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/workers"
	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// SyncMarker records a key's server-agreed serialization so the flush loop
// can suppress echo pushes. Satisfied by mirror.Mirror.
type SyncMarker interface {
	MarkSynced(key string, value json.RawMessage)
}

// Orchestrator runs the agent startup sequence exactly once.
type Orchestrator struct {
	local   store.LocalStore
	adapter adapter.ServerAdapter
	marker  SyncMarker
	workers workers.Worker
	app     config.ClientApp
	logger  *logger.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// New builds the startup orchestrator.
func New(local store.LocalStore, serverAdapter adapter.ServerAdapter, marker SyncMarker, ws workers.Worker, app config.ClientApp, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		local:   local,
		adapter: serverAdapter,
		marker:  marker,
		workers: ws,
		app:     app,
		logger:  log,
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the agent is operational, online or offline.
func (o *Orchestrator) Ready() <-chan struct{} {
	return o.ready
}

// Run executes the startup sequence: session, hydration, workers, ready.
// Only local store failures abort startup; everything server-side degrades to
// offline operation.
func (o *Orchestrator) Run(ctx context.Context) error {
	log := o.logger.With().Str("func", "*Orchestrator.Run").Logger()

	online := o.ensureSession(ctx)
	if online {
		if err := o.hydrate(ctx); err != nil {
			log.Warn().Err(err).Msg("hydration failed, starting offline with local data")
		}
	} else {
		log.Warn().Msg("no server session, starting offline")
	}

	o.workers.Run()
	o.readyOnce.Do(func() { close(o.ready) })

	return nil
}

// ensureSession reports whether the agent holds a token the server accepts.
// A token persisted from a previous run is probed first; only when it is
// absent or stale does the agent log in with its configured credentials.
func (o *Orchestrator) ensureSession(ctx context.Context) bool {
	log := o.logger.With().Str("func", "*Orchestrator.ensureSession").Logger()

	if token := o.storedToken(ctx); token != "" {
		o.adapter.SetToken(token)
		if err := o.adapter.Me(ctx); err == nil {
			return true
		}
		log.Debug().Msg("stored token rejected, logging in")
		o.adapter.SetToken("")
	}

	token, err := o.adapter.Login(ctx, o.app.Username, o.app.Password)
	if err != nil {
		log.Warn().Err(err).Msg("login failed")
		return false
	}

	if err = o.persistToken(ctx, token); err != nil {
		log.Warn().Err(err).Msg("could not persist session token")
	}
	return true
}

func (o *Orchestrator) storedToken(ctx context.Context) string {
	raw, err := o.local.Get(ctx, models.KeyToken)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			o.logger.Err(err).Msg("read stored token")
		}
		return ""
	}

	var token string
	if err = json.Unmarshal(raw, &token); err != nil {
		return ""
	}
	return token
}

func (o *Orchestrator) persistToken(ctx context.Context, token string) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return o.local.Set(ctx, models.KeyToken, raw)
}

// hydrate pulls the server snapshot and fills empty local slots. Non-empty
// local values always win here; reconciling them is the flush loop's job.
func (o *Orchestrator) hydrate(ctx context.Context) error {
	export, err := o.adapter.Export(ctx)
	if err != nil {
		return fmt.Errorf("pull server snapshot: %w", err)
	}

	hydrated := 0
	for key, serverValue := range export.KV {
		if models.IsSyncExcludedKey(key) {
			continue
		}
		if isEmptyValue(serverValue) {
			continue
		}

		localValue, err := o.local.Get(ctx, key)
		if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
			return fmt.Errorf("read local %s: %w", key, err)
		}

		if isEmptyValue(localValue) {
			if err = o.local.Set(ctx, key, serverValue); err != nil {
				return fmt.Errorf("hydrate %s: %w", key, err)
			}
			o.marker.MarkSynced(key, serverValue)
			hydrated++
			continue
		}

		// an identical local copy needs no push later
		if string(localValue) == string(serverValue) {
			o.marker.MarkSynced(key, serverValue)
		}
	}

	o.logger.Info().Int("hydrated", hydrated).Int64("exported_at", export.ExportedAt).Msg("bootstrap hydration done")
	return nil
}

// isEmptyValue reports whether a raw JSON value carries no data: absent,
// blank, JSON null, or an empty array or object.
func isEmptyValue(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", `""`, "null", "[]", "{}":
		return true
	}
	return false
}
