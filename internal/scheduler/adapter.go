package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"uplink/internal/domain"
	"uplink/internal/engine"
	"uplink/internal/guard"
	"uplink/internal/store"
)

// Setup is everything one background cycle needs, rebuilt from scratch on
// every invocation.
type Setup struct {
	// StorePath locates the shared SQLite file. The adapter opens a fresh
	// store for each invocation and closes it after.
	StorePath string

	Queues      []domain.QueueConfig
	Credentials engine.CredentialProvider

	// BackgroundOnly wires the store-backed foreground signal so a cycle
	// yields once the interactive context takes over.
	BackgroundOnly bool

	// Options are applied after the adapter's own wiring and may override
	// any of it.
	Options []engine.Option
}

// ConfigFactory rebuilds the Setup inside the invoked context. It must not
// capture stores, transports, or other live state from the registering
// context: the invocation may run in a process that shares nothing with it.
type ConfigFactory func(ctx context.Context) (Setup, error)

// EntryPoint is the callback handed to a Scheduler. Each Run reconstructs
// the world through the factory, runs one cycle, and reduces the outcome to
// the scheduler's boolean: true for completed, skipped, or interrupted
// cycles; false for setup failures, credential failures, and panics, so the
// scheduler's own task-level retry kicks in.
type EntryPoint struct {
	Factory ConfigFactory
	Logger  zerolog.Logger
}

// Run executes one isolated cycle.
func (ep *EntryPoint) Run(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ep.Logger.Error().Interface("panic", r).Msg("background cycle panicked")
			ok = false
		}
	}()

	setup, err := ep.Factory(ctx)
	if err != nil {
		ep.Logger.Error().Err(err).Msg("background configuration failed")
		return false
	}

	st, err := store.Open(setup.StorePath)
	if err != nil {
		ep.Logger.Error().Err(err).Msg("background store open failed")
		return false
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			ep.Logger.Warn().Err(cerr).Msg("background store close failed")
		}
	}()

	opts := make([]engine.Option, 0, len(setup.Options)+2)
	opts = append(opts, engine.WithLogger(ep.Logger))
	if setup.BackgroundOnly {
		opts = append(opts, engine.WithForegroundSignal(guard.NewStoreForeground(st)))
	}
	opts = append(opts, setup.Options...)

	orch, err := engine.NewOrchestrator(st, setup.Credentials, setup.Queues, opts...)
	if err != nil {
		ep.Logger.Error().Err(err).Msg("background orchestrator setup failed")
		return false
	}

	summary, err := orch.RunCycle(ctx)
	if err != nil {
		ep.Logger.Error().Err(err).Msg("background cycle failed")
		return false
	}

	evt := ep.Logger.Info().
		Int("delivered", summary.Delivered).
		Int("failed", summary.Failed).
		Bool("interrupted", summary.Interrupted)
	if summary.SkipReason != "" {
		evt = evt.Str("skip_reason", summary.SkipReason)
	}
	evt.Msg("background cycle finished")
	return true
}
