package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGuard struct {
	name string
	res  Result
}

func (g stubGuard) Name() string                { return g.name }
func (g stubGuard) Check(context.Context) Result { return g.res }

type fgFunc func(ctx context.Context) (bool, error)

func (f fgFunc) Foreground(ctx context.Context) (bool, error) { return f(ctx) }

type batteryFunc func(ctx context.Context) (int, bool, error)

func (f batteryFunc) Status(ctx context.Context) (int, bool, error) { return f(ctx) }

type onlineFunc func(ctx context.Context) (bool, error)

func (f onlineFunc) Online(ctx context.Context) (bool, error) { return f(ctx) }

func TestChainFirstSkipWins(t *testing.T) {
	chain := Chain{
		stubGuard{name: "pass", res: Result{}},
		stubGuard{name: "battery", res: Result{Skip: true, Reason: ReasonBattery}},
		stubGuard{name: "offline", res: Result{Skip: true, Reason: ReasonOffline}},
	}

	res := chain.Check(context.Background())
	require.True(t, res.Skip)
	assert.Equal(t, ReasonBattery, res.Reason)
}

func TestChainCleanPass(t *testing.T) {
	chain := Chain{
		stubGuard{name: "a"},
		stubGuard{name: "b"},
	}

	res := chain.Check(context.Background())
	assert.False(t, res.Skip)
	assert.Empty(t, res.Reason)
}

func TestForegroundGuard(t *testing.T) {
	g := Foreground{Signal: fgFunc(func(context.Context) (bool, error) { return true, nil })}
	res := g.Check(context.Background())
	require.True(t, res.Skip)
	assert.Equal(t, ReasonForeground, res.Reason)

	g.Signal = fgFunc(func(context.Context) (bool, error) { return false, nil })
	assert.False(t, g.Check(context.Background()).Skip)
}

func TestForegroundGuardSignalErrorPasses(t *testing.T) {
	boom := errors.New("flag read failed")
	g := Foreground{Signal: fgFunc(func(context.Context) (bool, error) { return false, boom })}

	res := g.Check(context.Background())
	assert.False(t, res.Skip)
	assert.Equal(t, boom, res.Err)
}

func TestBatteryGuard(t *testing.T) {
	g := Battery{
		Signal:    batteryFunc(func(context.Context) (int, bool, error) { return 15, false, nil }),
		Threshold: 20,
	}
	res := g.Check(context.Background())
	require.True(t, res.Skip)
	assert.Equal(t, ReasonBattery, res.Reason)
}

func TestBatteryGuardChargingPasses(t *testing.T) {
	g := Battery{
		Signal:    batteryFunc(func(context.Context) (int, bool, error) { return 5, true, nil }),
		Threshold: 20,
	}
	assert.False(t, g.Check(context.Background()).Skip)
}

func TestBatteryGuardAboveThresholdPasses(t *testing.T) {
	g := Battery{
		Signal:    batteryFunc(func(context.Context) (int, bool, error) { return 80, false, nil }),
		Threshold: 20,
	}
	assert.False(t, g.Check(context.Background()).Skip)
}

func TestBatteryGuardZeroThresholdSkipsSignal(t *testing.T) {
	calls := 0
	g := Battery{
		Signal: batteryFunc(func(context.Context) (int, bool, error) {
			calls++
			return 0, false, nil
		}),
	}

	assert.False(t, g.Check(context.Background()).Skip)
	assert.Zero(t, calls, "a disabled guard must not consult the signal")
}

func TestBatteryGuardSignalErrorPasses(t *testing.T) {
	boom := errors.New("no battery provider")
	g := Battery{
		Signal:    batteryFunc(func(context.Context) (int, bool, error) { return 0, false, boom }),
		Threshold: 20,
	}

	res := g.Check(context.Background())
	assert.False(t, res.Skip)
	assert.Equal(t, boom, res.Err)
}

func TestPendingGuard(t *testing.T) {
	g := Pending{Count: func(context.Context) (int, error) { return 0, nil }}
	res := g.Check(context.Background())
	require.True(t, res.Skip)
	assert.Equal(t, ReasonNoPending, res.Reason)

	g.Count = func(context.Context) (int, error) { return 3, nil }
	assert.False(t, g.Check(context.Background()).Skip)
}

func TestPendingGuardCountErrorPasses(t *testing.T) {
	boom := errors.New("store unavailable")
	g := Pending{Count: func(context.Context) (int, error) { return 0, boom }}

	res := g.Check(context.Background())
	assert.False(t, res.Skip)
	assert.Equal(t, boom, res.Err)
}

func TestConnectivityGuardOffline(t *testing.T) {
	notified := 0
	g := Connectivity{
		Signal: onlineFunc(func(context.Context) (bool, error) { return false, nil }),
		Notify: func(context.Context) { notified++ },
	}

	res := g.Check(context.Background())
	require.True(t, res.Skip)
	assert.Equal(t, ReasonOffline, res.Reason)
	assert.Equal(t, 1, notified)
}

func TestConnectivityGuardOnlinePasses(t *testing.T) {
	notified := 0
	g := Connectivity{
		Signal: onlineFunc(func(context.Context) (bool, error) { return true, nil }),
		Notify: func(context.Context) { notified++ },
	}

	assert.False(t, g.Check(context.Background()).Skip)
	assert.Zero(t, notified)
}

func TestConnectivityGuardVPNRequired(t *testing.T) {
	notified := 0
	g := Connectivity{
		Signal:   onlineFunc(func(context.Context) (bool, error) { return true, nil }),
		VPNCheck: func(context.Context) (bool, error) { return false, nil },
		Notify:   func(context.Context) { notified++ },
	}

	res := g.Check(context.Background())
	require.True(t, res.Skip)
	assert.Equal(t, ReasonVPN, res.Reason)
	assert.Equal(t, 1, notified)
}

func TestConnectivityGuardVPNCheckError(t *testing.T) {
	boom := errors.New("vpn probe failed")
	g := Connectivity{
		Signal:   onlineFunc(func(context.Context) (bool, error) { return true, nil }),
		VPNCheck: func(context.Context) (bool, error) { return false, boom },
	}

	res := g.Check(context.Background())
	require.True(t, res.Skip)
	assert.Equal(t, ReasonVPN, res.Reason)
	assert.Equal(t, boom, res.Err)
}

func TestConnectivityGuardSignalErrorCountsAsOffline(t *testing.T) {
	boom := errors.New("probe build failed")
	g := Connectivity{
		Signal: onlineFunc(func(context.Context) (bool, error) { return false, boom }),
	}

	res := g.Check(context.Background())
	require.True(t, res.Skip)
	assert.Equal(t, ReasonOffline, res.Reason)
	assert.Equal(t, boom, res.Err)
}
