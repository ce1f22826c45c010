// Package probe checks which endpoints answer an HTTP GET with status 200.
package probe

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/muurk/argus/internal/logging"
	"github.com/muurk/argus/internal/pool"
)

const (
	// DefaultTimeout bounds each reachability check
	DefaultTimeout = 5 * time.Second

	// DefaultWorkers is the number of endpoints checked in parallel
	DefaultWorkers = 10
)

// Outcome is the reachability verdict for one endpoint
type Outcome struct {
	Endpoint  string
	Reachable bool
}

// Prober runs reachability checks through a bounded worker pool
type Prober struct {
	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// Timeout bounds each check individually (0 = DefaultTimeout)
	Timeout time.Duration

	// Workers is the pool size (0 = DefaultWorkers)
	Workers int

	// OnResult is called from worker goroutines as each check completes,
	// in completion order. It must be safe for concurrent use. The order
	// of ProbeAll's return value does not depend on it.
	OnResult func(Outcome)

	dialer *net.Dialer
}

// New creates a prober with the default timeout and worker count
func New() *Prober {
	// Connects are bounded by the per-check context, not the dialer
	dialer := &net.Dialer{KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     30 * time.Second,
	}

	return &Prober{
		HTTPClient: &http.Client{Transport: transport},
		Timeout:    DefaultTimeout,
		Workers:    DefaultWorkers,
		dialer:     dialer,
	}
}

// SetTimeout sets the per-check timeout. It bounds the whole check,
// connect included.
func (p *Prober) SetTimeout(timeout time.Duration) {
	p.Timeout = timeout
}

// Check reports whether endpoint answers a GET with status 200 within the
// timeout. Every other outcome, including refusal, timeout and malformed
// URLs, is reported as unreachable.
func (p *Prober) Check(ctx context.Context, endpoint string) bool {
	status, err := p.get(ctx, endpoint)
	reachable := err == nil && status == http.StatusOK
	logging.LogProbe(endpoint, reachable, status, err)
	return reachable
}

func (p *Prober) get(ctx context.Context, endpoint string) (int, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	// Camera endpoints may stream forever; the status line is all we need
	_ = resp.Body.Close()

	return resp.StatusCode, nil
}

// ProbeAll checks every endpoint and returns one outcome per input, in
// input order. The returned error covers pool setup only.
func (p *Prober) ProbeAll(ctx context.Context, endpoints []string) ([]Outcome, error) {
	if len(endpoints) == 0 {
		return []Outcome{}, nil
	}

	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	wp, err := pool.New(workers)
	if err != nil {
		return nil, err
	}
	defer wp.Release()

	return pool.Map(ctx, wp, endpoints, func(ctx context.Context, _ int, endpoint string) Outcome {
		o := Outcome{Endpoint: endpoint, Reachable: p.Check(ctx, endpoint)}
		if p.OnResult != nil {
			p.OnResult(o)
		}
		return o
	})
}

// Reachable returns the endpoints of reachable outcomes, in order
func Reachable(outcomes []Outcome) []string {
	reachable := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Reachable {
			reachable = append(reachable, o.Endpoint)
		}
	}
	return reachable
}
