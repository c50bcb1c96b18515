package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"uplink/internal/guard"
	"uplink/internal/transport"
)

// Config carries the cycle-level knobs of an Orchestrator. Zero values are
// usable; withDefaults fills the rest.
type Config struct {
	BaseURL        string
	DefaultHeaders map[string]string
	RequestTimeout time.Duration

	// ForegroundSignal enables the foreground gate and the per-record
	// interruption check. Nil leaves both off.
	ForegroundSignal guard.ForegroundSignal

	// BatterySignal plus a positive BatteryThreshold enable the battery gate.
	BatterySignal    guard.BatterySignal
	BatteryThreshold int

	ConnectivitySignal guard.ConnectivitySignal
	VPNCheck           func(ctx context.Context) (bool, error)

	// Notifier enables notifications when non-nil. OfflineNotice additionally
	// emits a notice when the connectivity gate skips a cycle.
	Notifier      Notifier
	OfflineNotice bool

	Logger zerolog.Logger
	Clock  Clock

	// OnCycleStart fires after the guard chain and credential step pass.
	// OnCycleComplete fires after the last queue with the cycle totals.
	OnCycleStart    func()
	OnCycleComplete func(delivered, failed int)

	transport transport.Transport
}

func (c Config) withDefaults() Config {
	if c.transport == nil {
		c.transport = transport.NewHTTP()
	}
	if c.ConnectivitySignal == nil {
		c.ConnectivitySignal = guard.AlwaysOnline{}
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	return c
}

// Option customizes an Orchestrator.
type Option func(*Config)

// WithBaseURL sets the URL prefix of every delivery request.
func WithBaseURL(u string) Option {
	return func(c *Config) { c.BaseURL = u }
}

// WithDefaultHeaders sets cycle-level headers. Queue-level headers override
// them key by key.
func WithDefaultHeaders(h map[string]string) Option {
	return func(c *Config) { c.DefaultHeaders = h }
}

// WithRequestTimeout bounds each delivery request.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) { c.RequestTimeout = d }
}

// WithForegroundSignal gates cycles on the app being backgrounded and makes
// running drains yield when the app comes back.
func WithForegroundSignal(s guard.ForegroundSignal) Option {
	return func(c *Config) { c.ForegroundSignal = s }
}

// WithBatteryGuard skips cycles while the battery is below threshold percent
// and not charging. A threshold of zero disables the gate.
func WithBatteryGuard(s guard.BatterySignal, threshold int) Option {
	return func(c *Config) {
		c.BatterySignal = s
		c.BatteryThreshold = threshold
	}
}

// WithConnectivitySignal sets the reachability probe consulted before each
// cycle. The default assumes the network is always up.
func WithConnectivitySignal(s guard.ConnectivitySignal) Option {
	return func(c *Config) { c.ConnectivitySignal = s }
}

// WithVPNCheck adds a post-connectivity reachability requirement, e.g. for
// endpoints only visible inside a VPN.
func WithVPNCheck(fn func(ctx context.Context) (bool, error)) Option {
	return func(c *Config) { c.VPNCheck = fn }
}

// WithNotifier enables user notifications.
func WithNotifier(n Notifier) Option {
	return func(c *Config) { c.Notifier = n }
}

// WithOfflineNotice emits a notification when a cycle is skipped for lack of
// connectivity. Requires a Notifier.
func WithOfflineNotice() Option {
	return func(c *Config) { c.OfflineNotice = true }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithClock overrides the time source.
func WithClock(clk Clock) Option {
	return func(c *Config) { c.Clock = clk }
}

// WithCycleHooks installs lifecycle callbacks around each cycle that runs.
// Either may be nil.
func WithCycleHooks(start func(), complete func(delivered, failed int)) Option {
	return func(c *Config) {
		c.OnCycleStart = start
		c.OnCycleComplete = complete
	}
}

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(t transport.Transport) Option {
	return func(c *Config) { c.transport = t }
}
