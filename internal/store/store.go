// Package store persists queue records between executions. The contract is
// deliberately small — enqueue, full update, delete, enumerate, count — so
// the delivery pipeline stays crash-resumable on any key-value capable
// backend. The shipped implementation is SQLite.
package store

import (
	"context"
	"time"

	"uplink/internal/domain"
)

// Store is the durable record store, namespaced per queue name.
//
// Initialization is idempotent and safe to re-run at the start of every
// execution context, including a freshly spawned background one.
type Store interface {
	// Enqueue inserts a new record. Fails with domain.ErrDuplicate when the
	// (queue, local id) pair already exists.
	Enqueue(ctx context.Context, rec domain.Record) error
	// Get fetches one record or domain.ErrNotFound.
	Get(ctx context.Context, queue, localID string) (domain.Record, error)
	// GetAll dumps every record of one queue. Callers must not rely on order.
	GetAll(ctx context.Context, queue string) ([]domain.Record, error)
	// GetPending returns records with status pending or failed and a retry
	// count below maxRetries, oldest first. Stuck in_progress records and
	// dead records are deliberately excluded.
	GetPending(ctx context.Context, queue string, maxRetries int) ([]domain.Record, error)
	// Update replaces the full record. Fails with domain.ErrNotFound when
	// the record is absent.
	Update(ctx context.Context, rec domain.Record) error
	// Delete removes a record. Idempotent: deleting an absent record is not
	// an error.
	Delete(ctx context.Context, queue, localID string) error
	// PendingCount counts stored (therefore undelivered) records across the
	// named queues; with no names it counts the whole store.
	PendingCount(ctx context.Context, queues ...string) (int, error)
	// Clear removes every record of the named queues; with no names it
	// empties the whole store.
	Clear(ctx context.Context, queues ...string) error
	// SetFlag upserts a named signal value shared between execution contexts.
	SetFlag(ctx context.Context, name, value string) error
	// GetFlag reads a signal or domain.ErrNotFound.
	GetFlag(ctx context.Context, name string) (Flag, error)
	// Close releases the underlying backend.
	Close() error
}

// Flag is one shared signal row: an eventually consistent value written by
// one execution context and polled by another.
type Flag struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}
