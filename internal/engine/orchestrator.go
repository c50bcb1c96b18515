package engine

import (
	"context"
	"errors"
	"fmt"

	"uplink/internal/domain"
	"uplink/internal/guard"
	"uplink/internal/store"
)

// Orchestrator runs guarded delivery cycles over every registered queue, in
// registration order, sharing one transport and one credential per cycle.
type Orchestrator struct {
	store  store.Store
	creds  CredentialProvider
	queues []domain.QueueConfig
	cfg    Config
	chain  guard.Chain
}

// NewOrchestrator validates the queue configs and assembles the guard chain.
// Queue order is preserved; duplicate names are rejected with
// domain.ErrDuplicateQueue.
func NewOrchestrator(st store.Store, creds CredentialProvider, queues []domain.QueueConfig, opts ...Option) (*Orchestrator, error) {
	if st == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	if creds == nil {
		return nil, errors.New("orchestrator: credential provider is required")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	seen := make(map[string]struct{}, len(queues))
	normalized := make([]domain.QueueConfig, 0, len(queues))
	for _, qc := range queues {
		if err := qc.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[qc.Name]; dup {
			return nil, fmt.Errorf("queue %q: %w", qc.Name, domain.ErrDuplicateQueue)
		}
		seen[qc.Name] = struct{}{}
		normalized = append(normalized, qc.Normalized())
	}

	o := &Orchestrator{store: st, creds: creds, queues: normalized, cfg: cfg}
	o.chain = o.buildChain()
	return o, nil
}

// RunCycle executes one delivery cycle: guard chain, credential acquisition,
// then a drain of every queue. Guard skips and foreground interruptions are
// not errors; a missing credential is, and aborts before any record moves.
func (o *Orchestrator) RunCycle(ctx context.Context) (domain.Summary, error) {
	log := o.cfg.Logger

	if res := o.chain.Check(ctx); res.Skip {
		if res.Err != nil {
			log.Warn().Err(res.Err).Str("reason", res.Reason).Msg("cycle skipped")
		} else {
			log.Info().Str("reason", res.Reason).Msg("cycle skipped")
		}
		return domain.Summary{SkipReason: res.Reason, CompletedAt: o.cfg.Clock.Now()}, nil
	}

	token, err := o.creds.Token(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}
	if token == "" {
		return domain.Summary{}, domain.ErrAuthentication
	}

	if o.cfg.OnCycleStart != nil {
		o.cfg.OnCycleStart()
	}

	eng := &Engine{
		Store:      o.store,
		Transport:  o.cfg.transport,
		Foreground: o.cfg.ForegroundSignal,
		Notifier:   o.cfg.Notifier,
		Clock:      o.cfg.Clock,
		Logger:     log,
		BaseURL:    o.cfg.BaseURL,
		Headers:    o.cfg.DefaultHeaders,
		Timeout:    o.cfg.RequestTimeout,
	}

	var summary domain.Summary
	for _, qc := range o.queues {
		outcomes, err := eng.DrainQueue(ctx, qc, token)
		delivered, failed := Tally(outcomes)
		summary.Delivered += delivered
		summary.Failed += failed

		if errors.Is(err, domain.ErrInterrupted) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			summary.Interrupted = true
			break
		}
		if err != nil {
			// one queue's store trouble must not starve its siblings
			log.Error().Err(err).Str("queue", qc.Name).Msg("queue drain aborted")
		}
	}

	if o.cfg.OnCycleComplete != nil {
		o.cfg.OnCycleComplete(summary.Delivered, summary.Failed)
	}
	summary.CompletedAt = o.cfg.Clock.Now()

	log.Info().
		Int("delivered", summary.Delivered).
		Int("failed", summary.Failed).
		Bool("interrupted", summary.Interrupted).
		Msg("cycle complete")

	return summary, nil
}

func (o *Orchestrator) buildChain() guard.Chain {
	var chain guard.Chain
	if o.cfg.ForegroundSignal != nil {
		chain = append(chain, guard.Foreground{Signal: o.cfg.ForegroundSignal})
	}
	if o.cfg.BatterySignal != nil && o.cfg.BatteryThreshold > 0 {
		chain = append(chain, guard.Battery{Signal: o.cfg.BatterySignal, Threshold: o.cfg.BatteryThreshold})
	}
	chain = append(chain, guard.Pending{Count: func(ctx context.Context) (int, error) {
		names := o.queueNames()
		if len(names) == 0 {
			return 0, nil
		}
		return o.store.PendingCount(ctx, names...)
	}})

	conn := guard.Connectivity{Signal: o.cfg.ConnectivitySignal, VPNCheck: o.cfg.VPNCheck}
	if o.cfg.OfflineNotice && o.cfg.Notifier != nil {
		conn.Notify = func(ctx context.Context) {
			if err := o.cfg.Notifier.SyncSkipped(ctx, guard.ReasonOffline); err != nil {
				o.cfg.Logger.Warn().Err(err).Msg("offline notice failed")
			}
		}
	}
	chain = append(chain, conn)
	return chain
}

func (o *Orchestrator) queueNames() []string {
	names := make([]string, len(o.queues))
	for i, qc := range o.queues {
		names[i] = qc.Name
	}
	return names
}
