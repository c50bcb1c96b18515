package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Cron is the in-process Scheduler used by the daemon, standing in for a
// platform task scheduler.
type Cron struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

var _ Scheduler = (*Cron)(nil)

func NewCron() *Cron {
	return &Cron{
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
	}
}

// Start launches the cron loop in its own goroutine.
func (c *Cron) Start() {
	c.cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop halts scheduling and waits for a running invocation to finish.
func (c *Cron) Stop() {
	<-c.cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (c *Cron) Register(reg Registration, run RunFunc) error {
	if err := reg.validate(); err != nil {
		return err
	}
	sched, err := c.schedule(reg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[reg.TaskID]; ok {
		c.cron.Remove(old)
	}
	id := c.cron.Schedule(sched, cron.FuncJob(func() {
		if ok := run(context.Background()); !ok {
			log.Warn().Str("task_id", reg.TaskID).Msg("scheduled task reported failure")
		}
	}))
	c.entries[reg.TaskID] = id

	log.Info().
		Str("task_id", reg.TaskID).
		Dur("interval", reg.Interval).
		Str("spec", reg.Spec).
		Bool("requires_network", reg.Constraints.RequiresNetwork).
		Msg("task registered")
	return nil
}

func (c *Cron) Cancel(taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.entries[taskID]; ok {
		c.cron.Remove(id)
		delete(c.entries, taskID)
		log.Info().Str("task_id", taskID).Msg("task cancelled")
	}
	return nil
}

// NextRun reports when the named task fires next. The zero time means the
// task is unknown or the loop has not started.
func (c *Cron) NextRun(taskID string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.entries[taskID]
	if !ok {
		return time.Time{}, false
	}
	entry := c.cron.Entry(id)
	return entry.Next, entry.Valid()
}

func (c *Cron) schedule(reg Registration) (cron.Schedule, error) {
	if reg.Spec != "" {
		sched, err := cron.ParseStandard(reg.Spec)
		if err != nil {
			return nil, fmt.Errorf("scheduler: parse spec %q: %w", reg.Spec, err)
		}
		return sched, nil
	}
	return cron.Every(reg.Interval), nil
}

// ValidateSpec checks a cron expression without registering anything.
func ValidateSpec(expr string) error {
	_, err := cron.ParseStandard(expr)
	return err
}
