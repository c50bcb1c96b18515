package uplink

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"uplink/internal/engine"
)

const (
	// DefaultSyncInterval is used when StartScheduledSync is given a
	// non-positive interval.
	DefaultSyncInterval = 15 * time.Minute

	// DefaultRequestTimeout bounds each delivery request unless overridden.
	DefaultRequestTimeout = 30 * time.Second
)

type settings struct {
	baseURL          string
	headers          map[string]string
	timeout          time.Duration
	creds            CredentialProvider
	logger           zerolog.Logger
	notifier         Notifier
	offlineNotice    bool
	battery          BatterySignal
	batteryThreshold int
	connectivity     ConnectivitySignal
	vpnCheck         func(ctx context.Context) (bool, error)
	backgroundOnly   bool
	sched            Scheduler
	onCycleStart     func()
	onCycleComplete  func(delivered, failed int)
}

func defaultSettings() settings {
	return settings{
		timeout: DefaultRequestTimeout,
		logger:  zerolog.Nop(),
	}
}

// Option customizes a Client.
type Option func(*settings)

// WithBaseURL sets the URL prefix of every delivery request.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithDefaultHeaders sets headers applied to every request. Queue-level
// headers override them key by key.
func WithDefaultHeaders(h map[string]string) Option {
	return func(s *settings) { s.headers = h }
}

// WithRequestTimeout bounds each delivery request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithCredentials sets the provider consulted at the start of every cycle.
// Without one, every cycle fails with ErrAuthentication.
func WithCredentials(p CredentialProvider) Option {
	return func(s *settings) { s.creds = p }
}

// WithStaticToken is shorthand for WithCredentials(StaticToken(token)).
func WithStaticToken(token string) Option {
	return func(s *settings) { s.creds = StaticToken(token) }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithNotifier enables user notifications for cycle results.
func WithNotifier(n Notifier) Option {
	return func(s *settings) { s.notifier = n }
}

// WithOfflineNotice also notifies when a cycle is skipped for lack of
// connectivity. Requires a Notifier.
func WithOfflineNotice() Option {
	return func(s *settings) { s.offlineNotice = true }
}

// WithBatteryGuard skips scheduled cycles while the battery is below
// threshold percent and not charging.
func WithBatteryGuard(sig BatterySignal, threshold int) Option {
	return func(s *settings) {
		s.battery = sig
		s.batteryThreshold = threshold
	}
}

// WithConnectivitySignal sets the reachability probe consulted before each
// cycle. The default assumes the network is always up.
func WithConnectivitySignal(sig ConnectivitySignal) Option {
	return func(s *settings) { s.connectivity = sig }
}

// WithVPNCheck adds a post-connectivity reachability requirement for
// endpoints only visible inside a VPN.
func WithVPNCheck(fn func(ctx context.Context) (bool, error)) Option {
	return func(s *settings) { s.vpnCheck = fn }
}

// WithBackgroundOnlySync makes scheduled cycles yield to a foreground app:
// they are skipped while the foreground flag is set and running drains stop
// at the next record boundary. Pair with SetForeground. Manual SyncNow
// triggers are never gated this way.
func WithBackgroundOnlySync() Option {
	return func(s *settings) { s.backgroundOnly = true }
}

// WithScheduler replaces the built-in cron scheduler, e.g. with a platform
// task scheduler adapter.
func WithScheduler(sched Scheduler) Option {
	return func(s *settings) { s.sched = sched }
}

// WithCycleHooks installs callbacks around each cycle that gets past the
// guards. Either may be nil.
func WithCycleHooks(start func(), complete func(delivered, failed int)) Option {
	return func(s *settings) {
		s.onCycleStart = start
		s.onCycleComplete = complete
	}
}

// cycleOptions maps the settings onto engine options, minus the foreground
// signal: manual triggers are never foreground-gated, and background runs
// wire their own signal against their own store handle.
func (s settings) cycleOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithBaseURL(s.baseURL),
		engine.WithRequestTimeout(s.timeout),
		engine.WithLogger(s.logger),
	}
	if s.headers != nil {
		opts = append(opts, engine.WithDefaultHeaders(s.headers))
	}
	if s.notifier != nil {
		opts = append(opts, engine.WithNotifier(s.notifier))
	}
	if s.offlineNotice {
		opts = append(opts, engine.WithOfflineNotice())
	}
	if s.battery != nil {
		opts = append(opts, engine.WithBatteryGuard(s.battery, s.batteryThreshold))
	}
	if s.connectivity != nil {
		opts = append(opts, engine.WithConnectivitySignal(s.connectivity))
	}
	if s.vpnCheck != nil {
		opts = append(opts, engine.WithVPNCheck(s.vpnCheck))
	}
	if s.onCycleStart != nil || s.onCycleComplete != nil {
		opts = append(opts, engine.WithCycleHooks(s.onCycleStart, s.onCycleComplete))
	}
	return opts
}

// EnqueueOption customizes a single enqueue.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	localID    string
	serverID   *string
	pathSuffix *string
}

// WithLocalID fixes the record's local id instead of generating one, turning
// the id into an idempotency key: a second enqueue with the same id fails
// with ErrDuplicate.
func WithLocalID(id string) EnqueueOption {
	return func(o *enqueueOptions) { o.localID = id }
}

// WithServerID pre-binds the record to a known server-side id, for updates
// and deletes of already-synced entities.
func WithServerID(id string) EnqueueOption {
	return func(o *enqueueOptions) { o.serverID = &id }
}

// WithPathSuffix appends a static suffix to the queue endpoint for this
// record, e.g. "/42". A queue-level SuffixBuilder takes precedence.
func WithPathSuffix(suffix string) EnqueueOption {
	return func(o *enqueueOptions) { o.pathSuffix = &suffix }
}
