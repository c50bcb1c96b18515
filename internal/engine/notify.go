package engine

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier surfaces cycle results to the user. Implementations must be safe
// for concurrent use. A Notifier error never affects delivery results; it is
// logged and dropped.
type Notifier interface {
	// QueueSummary reports the outcome of one queue after at least one
	// delivery attempt was made.
	QueueSummary(ctx context.Context, queue string, delivered, failed int) error

	// SyncSkipped reports that a cycle was skipped before any delivery,
	// for example because the device is offline.
	SyncSkipped(ctx context.Context, reason string) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) QueueSummary(context.Context, string, int, int) error { return nil }

func (NopNotifier) SyncSkipped(context.Context, string) error { return nil }

// LogNotifier writes notifications to a structured logger. It stands in for
// a platform notification service in daemon and test setups.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) QueueSummary(_ context.Context, queue string, delivered, failed int) error {
	n.Log.Info().
		Str("queue", queue).
		Int("delivered", delivered).
		Int("failed", failed).
		Msg("sync finished")
	return nil
}

func (n LogNotifier) SyncSkipped(_ context.Context, reason string) error {
	n.Log.Info().Str("reason", reason).Msg("sync skipped")
	return nil
}
