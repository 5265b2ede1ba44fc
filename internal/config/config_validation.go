// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BisonByte

package config

import "time"

// Default timing values applied when neither env, flags nor the JSON file
// specify them. The debounce and retry values mirror the timing contract of
// the device sync agent: ~1s quiet period after the last local write, 2s
// retry when a flush has to be deferred, 5s staleness bound.
const (
	defaultFlushDebounce  = time.Second
	defaultFlushRetry     = 2 * time.Second
	defaultSyncInterval   = 5 * time.Second
	defaultTokenDuration  = 12 * time.Hour
	defaultRequestTimeout = 30 * time.Second
)

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Workers.FlushDebounce == 0 {
		cfg.Workers.FlushDebounce = defaultFlushDebounce
	}
	if cfg.Workers.FlushRetry == 0 {
		cfg.Workers.FlushRetry = defaultFlushRetry
	}
	if cfg.Workers.SyncInterval == 0 {
		cfg.Workers.SyncInterval = defaultSyncInterval
	}
	if cfg.App.TokenDuration == 0 {
		cfg.App.TokenDuration = defaultTokenDuration
	}
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = "vogue.bisonbyte.io"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = defaultRequestTimeout
	}
}

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants shared by both binaries. Server-only requirements (sign key,
// DSN) are enforced in cmd/server, because the same structured config also
// feeds [GetClientConfig], which needs neither.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.BaseURL == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.FlushDebounce == 0 || cfg.Workers.SyncInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
