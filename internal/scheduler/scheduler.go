// Package scheduler connects delivery cycles to an outer task scheduler: an
// in-process cron implementation for daemon deployments, and the entry point
// adapter a platform scheduler invokes inside an isolated background context.
package scheduler

import (
	"context"
	"errors"
	"time"
)

// Constraints mirror what platform schedulers let a periodic task require.
// The in-process implementation records them for visibility; actual
// enforcement happens in the guard chain at the start of each cycle.
type Constraints struct {
	RequiresNetwork  bool
	RequiresCharging bool
}

// Registration describes one periodic task. Spec, when set, is a standard
// five-field cron expression and takes precedence over Interval.
type Registration struct {
	TaskID      string
	Interval    time.Duration
	Spec        string
	Constraints Constraints
}

func (r Registration) validate() error {
	if r.TaskID == "" {
		return errors.New("scheduler: task id is required")
	}
	if r.Spec == "" && r.Interval <= 0 {
		return errors.New("scheduler: interval or cron spec is required")
	}
	return nil
}

// RunFunc is the scheduled callback. The boolean tells the scheduler whether
// the invocation succeeded; false invites an earlier retry.
type RunFunc func(ctx context.Context) bool

// Scheduler registers periodic tasks by id. Registering an existing id
// replaces its schedule; Cancel is idempotent.
type Scheduler interface {
	Register(reg Registration, run RunFunc) error
	Cancel(taskID string) error
}
