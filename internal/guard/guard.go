// Package guard holds the pre-flight checks that gate a sync cycle. Guards
// run in a fixed order and short-circuit with a benign skip; they never fail
// a cycle.
package guard

import "context"

// Skip reasons reported in a cycle summary.
const (
	ReasonForeground = "foreground"
	ReasonBattery    = "battery_low"
	ReasonNoPending  = "no_pending_data"
	ReasonOffline    = "offline"
	ReasonVPN        = "vpn_unavailable"
)

// Result is one guard's verdict. Err carries a signal-provider failure for
// logging; the guard has already folded it into the Skip decision.
type Result struct {
	Skip   bool
	Reason string
	Err    error
}

// Guard is a single pre-flight check.
type Guard interface {
	Name() string
	Check(ctx context.Context) Result
}

// Chain evaluates guards sequentially; the first skip wins.
type Chain []Guard

// Check runs the chain. A clean pass returns a zero Result.
func (c Chain) Check(ctx context.Context) Result {
	for _, g := range c {
		if res := g.Check(ctx); res.Skip {
			return res
		}
	}
	return Result{}
}

// Foreground skips while an interactive session is visible. A signal read
// failure counts as background: background delivery is the safe default.
type Foreground struct {
	Signal ForegroundSignal
}

func (Foreground) Name() string { return "foreground" }

func (g Foreground) Check(ctx context.Context) Result {
	fg, err := g.Signal.Foreground(ctx)
	if err != nil {
		return Result{Err: err}
	}
	if fg {
		return Result{Skip: true, Reason: ReasonForeground}
	}
	return Result{}
}

// Battery skips below the threshold unless the device is charging. A signal
// failure passes: an unknown level must not starve the queue forever.
type Battery struct {
	Signal    BatterySignal
	Threshold int
}

func (Battery) Name() string { return "battery" }

func (g Battery) Check(ctx context.Context) Result {
	if g.Threshold <= 0 {
		return Result{}
	}
	level, charging, err := g.Signal.Status(ctx)
	if err != nil {
		return Result{Err: err}
	}
	if level < g.Threshold && !charging {
		return Result{Skip: true, Reason: ReasonBattery}
	}
	return Result{}
}

// Pending skips with zero network activity when nothing is waiting. Count is
// the aggregate across every registered queue. A count failure passes and
// lets the engine surface the store problem per queue.
type Pending struct {
	Count func(ctx context.Context) (int, error)
}

func (Pending) Name() string { return "pending_data" }

func (g Pending) Check(ctx context.Context) Result {
	n, err := g.Count(ctx)
	if err != nil {
		return Result{Err: err}
	}
	if n == 0 {
		return Result{Skip: true, Reason: ReasonNoPending}
	}
	return Result{}
}

// Connectivity skips when the network is unreachable or a configured VPN
// check fails. A probe failure counts as offline. Notify, when set, tells
// the user a sync was skipped for connectivity.
type Connectivity struct {
	Signal   ConnectivitySignal
	VPNCheck func(ctx context.Context) (bool, error)
	Notify   func(ctx context.Context)
}

func (Connectivity) Name() string { return "connectivity" }

func (g Connectivity) Check(ctx context.Context) Result {
	online, err := g.Signal.Online(ctx)
	if err != nil || !online {
		g.notify(ctx)
		return Result{Skip: true, Reason: ReasonOffline, Err: err}
	}
	if g.VPNCheck != nil {
		ok, err := g.VPNCheck(ctx)
		if err != nil || !ok {
			g.notify(ctx)
			return Result{Skip: true, Reason: ReasonVPN, Err: err}
		}
	}
	return Result{}
}

func (g Connectivity) notify(ctx context.Context) {
	if g.Notify != nil {
		g.Notify(ctx)
	}
}
