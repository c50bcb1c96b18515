package guard

import (
	"context"
	"net/http"
	"time"
)

// ForegroundSignal reports whether an interactive session is currently
// visible. Implementations are external providers; the store-backed one in
// this package is the default.
type ForegroundSignal interface {
	Foreground(ctx context.Context) (bool, error)
}

// BatterySignal reports charge level (0-100) and charging state.
type BatterySignal interface {
	Status(ctx context.Context) (level int, charging bool, err error)
}

// ConnectivitySignal reports whether the network is reachable.
type ConnectivitySignal interface {
	Online(ctx context.Context) (bool, error)
}

// AlwaysOnline is the connectivity signal for environments without a real
// reachability provider.
type AlwaysOnline struct{}

func (AlwaysOnline) Online(context.Context) (bool, error) { return true, nil }

// MainsPower is the battery signal for plugged-in hosts.
type MainsPower struct{}

func (MainsPower) Status(context.Context) (int, bool, error) { return 100, true, nil }

// Probe checks reachability with a HEAD request against a fixed URL.
type Probe struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

func (p Probe) Online(ctx context.Context) (bool, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false, err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, nil // unreachable, not an error
	}
	resp.Body.Close()
	return true, nil
}
