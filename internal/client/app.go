package client

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/BisonByte/vogue.bisonbyte.io/internal/adapter"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/bootstrap"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/config"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/intent"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/logger"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/mirror"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/store"
	"github.com/BisonByte/vogue.bisonbyte.io/internal/workers"
)

// App is the assembled device agent.
type App struct {
	local        store.LocalStore
	mirror       *mirror.Mirror
	intents      *intent.Recorder
	orchestrator *bootstrap.Orchestrator
	flushWorker  *workers.FlushIntervalWorker
	logger       *logger.Logger
}

// NewApp wires every agent component from the client configuration.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	local, err := store.NewLocalStore(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("create local store: %w", err)
	}

	serverAdapter := adapter.NewHTTPServerAdapter(cfg.Adapter)
	recorder := intent.NewRecorder()
	m := mirror.New(local, serverAdapter, recorder, cfg.Workers, nil, log)

	flushWorker := workers.NewFlushIntervalWorker(m, cfg.Workers.SyncInterval, log)
	ws := workers.NewWorkers(flushWorker)

	orchestrator := bootstrap.New(local, serverAdapter, m, ws, cfg.App, log)

	return &App{
		local:        local,
		mirror:       m,
		intents:      recorder,
		orchestrator: orchestrator,
		flushWorker:  flushWorker,
		logger:       log,
	}, nil
}

// Store exposes the mirror surface for UI layers embedding the agent.
func (a *App) Store() mirror.Store {
	return a.mirror
}

// Intents exposes the delete-intent recorder so the UI can register
// confirmed destructive prompts.
func (a *App) Intents() *intent.Recorder {
	return a.intents
}

// Ready is closed once bootstrap has finished, online or offline.
func (a *App) Ready() <-chan struct{} {
	return a.orchestrator.Ready()
}

// Run bootstraps the agent and blocks until a stop signal arrives, then
// flushes outstanding writes and closes the local store.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := a.orchestrator.Run(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	a.logger.Info().Msg("agent running")
	<-ctx.Done()

	a.logger.Info().Msg("stopping agent")
	a.flushWorker.Stop()

	if err := a.local.Close(); err != nil {
		return fmt.Errorf("close local store: %w", err)
	}

	a.logger.Info().Msg("agent stopped gracefully")
	return nil
}
