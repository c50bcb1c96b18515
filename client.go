package uplink

import (
	"context"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"uplink/internal/domain"
	"uplink/internal/engine"
	"uplink/internal/scheduler"
	"uplink/internal/store"
)

const syncTaskID = "uplink.sync"

// Client is the caller-facing entry into the outbox. One Client owns one
// store; its methods are safe for concurrent use. Delivery cycles are
// serialized: a second trigger waits for the running cycle to finish.
type Client struct {
	path string
	set  settings

	store store.Store

	mu     sync.RWMutex // guards queues and byName
	queues []domain.QueueConfig
	byName map[string]domain.QueueConfig

	syncMu sync.Mutex // one cycle at a time

	sched    Scheduler
	cron     *scheduler.Cron // set when the built-in scheduler is used
	cronOnce sync.Once
}

// New opens (or creates) the store at path and returns a ready Client.
// Queues are registered separately; a Client without credentials can enqueue
// and inspect but every cycle fails with ErrAuthentication.
func New(path string, opts ...Option) (*Client, error) {
	set := defaultSettings()
	for _, opt := range opts {
		opt(&set)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}

	c := &Client{
		path:   path,
		set:    set,
		store:  st,
		byName: make(map[string]domain.QueueConfig),
		sched:  set.sched,
	}
	if c.sched == nil {
		c.cron = scheduler.NewCron()
		c.sched = c.cron
	}
	return c, nil
}

// RegisterQueue adds one queue to the delivery set. Order of registration is
// the order queues drain in. Registering a name twice fails with
// ErrDuplicateQueue; renaming a queue after release orphans its records.
func (c *Client) RegisterQueue(cfg QueueConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[cfg.Name]; ok {
		return fmt.Errorf("queue %q: %w", cfg.Name, ErrDuplicateQueue)
	}
	norm := cfg.Normalized()
	c.byName[norm.Name] = norm
	c.queues = append(c.queues, norm)
	return nil
}

// Enqueue serializes model through the queue's Serializer and stores it as a
// pending record, returning the generated local id. Raw JSON ([]byte or
// json.RawMessage) bypasses the serializer; a map[string]any is accepted
// without one.
func (c *Client) Enqueue(ctx context.Context, queue string, model any, opts ...EnqueueOption) (string, error) {
	cfg, err := c.queueConfig(queue)
	if err != nil {
		return "", err
	}
	payload, err := encodePayload(cfg, model)
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, cfg, payload, opts)
}

// EnqueueRaw stores an already-encoded JSON payload verbatim, preserving its
// byte-for-byte layout including key order.
func (c *Client) EnqueueRaw(ctx context.Context, queue string, payload []byte, opts ...EnqueueOption) (string, error) {
	cfg, err := c.queueConfig(queue)
	if err != nil {
		return "", err
	}
	if !json.Valid(payload) {
		return "", fmt.Errorf("queue %q: payload is not valid JSON", queue)
	}
	return c.enqueue(ctx, cfg, payload, opts)
}

func (c *Client) enqueue(ctx context.Context, cfg domain.QueueConfig, payload json.RawMessage, opts []EnqueueOption) (string, error) {
	var eo enqueueOptions
	for _, opt := range opts {
		opt(&eo)
	}
	if eo.localID == "" {
		eo.localID = uuid.NewString()
	}

	rec := domain.Record{
		LocalID:    eo.localID,
		QueueName:  cfg.Name,
		Payload:    payload,
		ServerID:   eo.serverID,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
		PathSuffix: eo.pathSuffix,
	}
	if err := c.store.Enqueue(ctx, rec); err != nil {
		return "", err
	}

	c.set.logger.Debug().
		Str("queue", cfg.Name).
		Str("local_id", rec.LocalID).
		Msg("record enqueued")
	return rec.LocalID, nil
}

// SyncNow runs one delivery cycle immediately and returns its summary. The
// guard chain still applies, except the foreground gate: an explicit trigger
// is taken as user intent. Only a credential failure is returned as an
// error; skips and partial failures are reported in the Summary.
func (c *Client) SyncNow(ctx context.Context) (Summary, error) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	if c.set.creds == nil {
		return Summary{}, fmt.Errorf("%w: no credential provider configured", ErrAuthentication)
	}

	orch, err := engine.NewOrchestrator(c.store, c.set.creds, c.snapshotQueues(), c.set.cycleOptions()...)
	if err != nil {
		return Summary{}, err
	}
	return orch.RunCycle(ctx)
}

// Get fetches one record by queue and local id.
func (c *Client) Get(ctx context.Context, queue, localID string) (Record, error) {
	if _, err := c.queueConfig(queue); err != nil {
		return Record{}, err
	}
	return c.store.Get(ctx, queue, localID)
}

// ListPending returns the records a cycle would attempt next for one queue,
// oldest first.
func (c *Client) ListPending(ctx context.Context, queue string) ([]Record, error) {
	cfg, err := c.queueConfig(queue)
	if err != nil {
		return nil, err
	}
	return c.store.GetPending(ctx, cfg.Name, cfg.MaxRetries)
}

// ListAll returns every stored record of one queue, including stuck
// in_progress rows and dead rows.
func (c *Client) ListAll(ctx context.Context, queue string) ([]Record, error) {
	if _, err := c.queueConfig(queue); err != nil {
		return nil, err
	}
	return c.store.GetAll(ctx, queue)
}

// Remove discards one record without delivering it. Removing an absent
// record is not an error.
func (c *Client) Remove(ctx context.Context, queue, localID string) error {
	if _, err := c.queueConfig(queue); err != nil {
		return err
	}
	return c.store.Delete(ctx, queue, localID)
}

// Requeue puts a record back into rotation: status pending, retry count
// zero. This is the manual path out of the dead state and off a stuck
// in_progress row; the last attempt time is kept as history.
func (c *Client) Requeue(ctx context.Context, queue, localID string) error {
	if _, err := c.queueConfig(queue); err != nil {
		return err
	}
	rec, err := c.store.Get(ctx, queue, localID)
	if err != nil {
		return err
	}
	rec.Status = domain.StatusPending
	rec.RetryCount = 0
	rec.ErrorMessage = nil
	return c.store.Update(ctx, rec)
}

// PendingCount reports how many records are stored across all registered
// queues. Every stored record is by definition undelivered.
func (c *Client) PendingCount(ctx context.Context) (int, error) {
	names := c.queueNames()
	if len(names) == 0 {
		return 0, nil
	}
	return c.store.PendingCount(ctx, names...)
}

// ClearAll purges every record in the store, registered or not.
func (c *Client) ClearAll(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// StartScheduledSync registers the recurring background cycle with the
// scheduler. A non-positive interval falls back to DefaultSyncInterval;
// calling it again replaces the schedule.
func (c *Client) StartScheduledSync(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	ep := &scheduler.EntryPoint{Factory: c.backgroundSetup, Logger: c.set.logger}
	reg := scheduler.Registration{
		TaskID:      syncTaskID,
		Interval:    interval,
		Constraints: scheduler.Constraints{RequiresNetwork: true},
	}
	if err := c.sched.Register(reg, ep.Run); err != nil {
		return err
	}
	if c.cron != nil {
		c.cronOnce.Do(c.cron.Start)
	}
	return nil
}

// StartScheduledSyncSpec registers the recurring background cycle on a
// standard five-field cron expression instead of a fixed interval.
func (c *Client) StartScheduledSyncSpec(spec string) error {
	ep := &scheduler.EntryPoint{Factory: c.backgroundSetup, Logger: c.set.logger}
	reg := scheduler.Registration{
		TaskID:      syncTaskID,
		Spec:        spec,
		Constraints: scheduler.Constraints{RequiresNetwork: true},
	}
	if err := c.sched.Register(reg, ep.Run); err != nil {
		return err
	}
	if c.cron != nil {
		c.cronOnce.Do(c.cron.Start)
	}
	return nil
}

// StopScheduledSync cancels the recurring background cycle. Idempotent.
func (c *Client) StopScheduledSync() error {
	return c.sched.Cancel(syncTaskID)
}

// backgroundSetup is the ConfigFactory handed to the scheduler. It returns
// declarative state only; the entry point opens its own store handle.
func (c *Client) backgroundSetup(context.Context) (Setup, error) {
	return Setup{
		StorePath:      c.path,
		Queues:         c.snapshotQueues(),
		Credentials:    c.set.creds,
		BackgroundOnly: c.set.backgroundOnly,
		Options:        c.set.cycleOptions(),
	}, nil
}

// SetForeground records whether the app is interactive. The flag lives in
// the store so background cycles in other processes observe it; they treat
// it as eventually consistent and ignore marks older than the staleness
// bound.
func (c *Client) SetForeground(ctx context.Context, foreground bool) error {
	value := "false"
	if foreground {
		value = "true"
	}
	return c.store.SetFlag(ctx, store.FlagForeground, value)
}

// Close stops the built-in scheduler, if running, and closes the store.
func (c *Client) Close() error {
	if c.cron != nil {
		c.cron.Stop()
	}
	return c.store.Close()
}

// Queues returns the registered queue configs in registration order.
func (c *Client) Queues() []QueueConfig {
	return c.snapshotQueues()
}

func (c *Client) queueConfig(name string) (domain.QueueConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cfg, ok := c.byName[name]
	if !ok {
		return domain.QueueConfig{}, fmt.Errorf("queue %q: %w", name, ErrUnknownQueue)
	}
	return cfg, nil
}

func (c *Client) snapshotQueues() []domain.QueueConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.QueueConfig(nil), c.queues...)
}

func (c *Client) queueNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.queues))
	for i, cfg := range c.queues {
		names[i] = cfg.Name
	}
	return names
}

func encodePayload(cfg domain.QueueConfig, model any) (json.RawMessage, error) {
	switch m := model.(type) {
	case json.RawMessage:
		if !json.Valid(m) {
			return nil, fmt.Errorf("queue %q: payload is not valid JSON", cfg.Name)
		}
		return m, nil
	case []byte:
		if !json.Valid(m) {
			return nil, fmt.Errorf("queue %q: payload is not valid JSON", cfg.Name)
		}
		return json.RawMessage(m), nil
	}

	if cfg.Serialize != nil {
		fields, err := cfg.Serialize(model)
		if err != nil {
			return nil, fmt.Errorf("queue %q: serialize: %w", cfg.Name, err)
		}
		return json.Marshal(fields)
	}
	if fields, ok := model.(map[string]any); ok {
		return json.Marshal(fields)
	}
	return nil, fmt.Errorf("queue %q has no serializer for %T", cfg.Name, model)
}
