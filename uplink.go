// Package uplink is a durable, offline-first outbox for locally originated
// mutations. Callers enqueue records into named queues; delivery cycles send
// them to a remote HTTP API, gated by a guard chain and driven either by an
// explicit trigger or by a background scheduler. Records survive restarts in
// SQLite, retry with a per-record budget, and park as dead once the budget
// is exhausted.
//
// The minimal setup registers a queue and triggers a cycle:
//
//	client, err := uplink.New("uplink.db",
//		uplink.WithBaseURL("https://api.example.com"),
//		uplink.WithStaticToken(token),
//	)
//	if err != nil {
//		// ...
//	}
//	defer client.Close()
//
//	err = client.RegisterQueue(uplink.QueueConfig{
//		Name:     "notes",
//		Endpoint: "/api/notes",
//	})
//	localID, err := client.EnqueueRaw(ctx, "notes", []byte(`{"title":"hello"}`))
//	summary, err := client.SyncNow(ctx)
package uplink

import (
	"uplink/internal/domain"
	"uplink/internal/engine"
	"uplink/internal/guard"
	"uplink/internal/scheduler"
)

// Model types, re-exported from the internal packages that implement them.
type (
	// Record is one queued mutation with its delivery state.
	Record = domain.Record
	// Status is the persisted lifecycle state of a Record.
	Status = domain.Status
	// QueueConfig declares one queue's delivery contract.
	QueueConfig = domain.QueueConfig
	// Summary aggregates one delivery cycle.
	Summary = domain.Summary
	// Outcome is the result of one record's delivery attempt.
	Outcome = domain.Outcome

	// Serializer converts a caller model into the record payload mapping.
	Serializer = domain.Serializer
	// IDExtractor pulls the server-assigned id out of a response object.
	IDExtractor = domain.IDExtractor
	// SuffixBuilder derives a per-record endpoint suffix.
	SuffixBuilder = domain.SuffixBuilder
	// SuccessHook runs after a record is confirmed delivered.
	SuccessHook = domain.SuccessHook
	// FailureHook runs after a failed attempt is persisted.
	FailureHook = domain.FailureHook

	// TransportError wraps a network-level delivery failure.
	TransportError = domain.TransportError
	// RejectionError marks a response outside the queue's success set.
	RejectionError = domain.RejectionError

	// CredentialProvider supplies the per-cycle credential.
	CredentialProvider = engine.CredentialProvider
	// CredentialFunc adapts a function to a CredentialProvider.
	CredentialFunc = engine.CredentialFunc
	// Notifier surfaces cycle results to the user.
	Notifier = engine.Notifier
	// NopNotifier discards all notifications.
	NopNotifier = engine.NopNotifier
	// LogNotifier writes notifications to a structured logger.
	LogNotifier = engine.LogNotifier

	// ForegroundSignal reports whether the app is interactive.
	ForegroundSignal = guard.ForegroundSignal
	// BatterySignal reports charge level and charging state.
	BatterySignal = guard.BatterySignal
	// ConnectivitySignal reports network reachability.
	ConnectivitySignal = guard.ConnectivitySignal
	// Probe is a ConnectivitySignal backed by an HTTP reachability check.
	Probe = guard.Probe

	// Scheduler registers periodic background sync tasks.
	Scheduler = scheduler.Scheduler
	// Registration describes one scheduled task.
	Registration = scheduler.Registration
	// RunFunc is the scheduled callback a Scheduler invokes.
	RunFunc = scheduler.RunFunc
	// Constraints mirror platform scheduler task requirements.
	Constraints = scheduler.Constraints
	// EntryPoint is the callback a Scheduler invokes per cycle.
	EntryPoint = scheduler.EntryPoint
	// ConfigFactory rebuilds a background Setup per invocation.
	ConfigFactory = scheduler.ConfigFactory
	// Setup is everything one background cycle needs.
	Setup = scheduler.Setup
)

// Record lifecycle states. The ordinals are persisted; see Status.
const (
	StatusPending    = domain.StatusPending
	StatusInProgress = domain.StatusInProgress
	StatusSynced     = domain.StatusSynced
	StatusFailed     = domain.StatusFailed
	StatusDead       = domain.StatusDead
)

// Skip reasons reported in Summary.SkipReason.
const (
	SkipForeground = guard.ReasonForeground
	SkipBattery    = guard.ReasonBattery
	SkipNoPending  = guard.ReasonNoPending
	SkipOffline    = guard.ReasonOffline
	SkipVPN        = guard.ReasonVPN
)

// Sentinel errors callers can match with errors.Is.
var (
	ErrDuplicate      = domain.ErrDuplicate
	ErrNotFound       = domain.ErrNotFound
	ErrUnknownQueue   = domain.ErrUnknownQueue
	ErrDuplicateQueue = domain.ErrDuplicateQueue
	ErrAuthentication = domain.ErrAuthentication
	ErrInterrupted    = domain.ErrInterrupted
)

// StaticToken builds a CredentialProvider around a fixed token.
func StaticToken(token string) CredentialProvider {
	return engine.StaticCredential(token)
}
