// Package health folds per-integration connectivity probes into a single
// service health status. Probe results are cached for a short TTL and
// refreshed by exactly one in-flight probe at a time, so the health
// endpoint never amplifies load on the remote services.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/braxlabs/facet/internal/logger"
	"github.com/braxlabs/facet/internal/remote"
)

// Verdicts for the folded service status.
const (
	VerdictOK       = "ok"
	VerdictDegraded = "degraded"
	VerdictDisabled = "disabled"
)

// Prober is one integration target the aggregator watches.
type Prober interface {
	Name() string
	Enabled() bool
	Probe(ctx context.Context) error
}

// Report is the cached outcome of the latest probe for one target.
type Report struct {
	Target    string        `json:"target"`
	State     remote.State  `json:"state"`
	CheckedAt time.Time     `json:"checked_at"`
	Latency   time.Duration `json:"latency,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Status is the folded service health consumed by the health endpoint.
type Status struct {
	Status  string   `json:"status"` // ok | degraded | disabled
	Targets []Report `json:"targets"`
}

// Aggregator caches per-target connectivity with a fixed TTL. Concurrent
// refreshes of the same target collapse to a single outbound probe.
type Aggregator struct {
	probers      []Prober
	ttl          time.Duration
	probeTimeout time.Duration
	logger       logger.Logger

	mu    sync.RWMutex
	cache map[string]Report
	group singleflight.Group

	now func() time.Time // for tests
}

// NewAggregator builds an aggregator over the given targets. ttl bounds how
// long a probe result is served from cache; probeTimeout bounds each probe
// and must be shorter than normal operation timeouts.
func NewAggregator(ttl, probeTimeout time.Duration, log logger.Logger, probers ...Prober) *Aggregator {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &Aggregator{
		probers:      probers,
		ttl:          ttl,
		probeTimeout: probeTimeout,
		logger:       log,
		cache:        make(map[string]Report, len(probers)),
		now:          time.Now,
	}
}

// Check returns the connectivity report for one target, probing only when
// the cached result has expired. A disabled gate pins the state to
// StateDisabled without ever probing.
func (a *Aggregator) Check(ctx context.Context, p Prober) Report {
	if !p.Enabled() {
		return Report{Target: p.Name(), State: remote.StateDisabled, CheckedAt: a.now()}
	}

	a.mu.RLock()
	cached, ok := a.cache[p.Name()]
	a.mu.RUnlock()
	if ok && a.now().Sub(cached.CheckedAt) < a.ttl {
		return cached
	}

	// Expired (or first call): exactly one probe runs; concurrent callers
	// wait for its result instead of stampeding the remote service.
	v, _, _ := a.group.Do(p.Name(), func() (any, error) {
		report := a.probe(ctx, p)
		a.mu.Lock()
		a.cache[p.Name()] = report
		a.mu.Unlock()
		return report, nil
	})
	return v.(Report)
}

func (a *Aggregator) probe(ctx context.Context, p Prober) Report {
	// The probe outcome is cached for a full TTL and shared by every
	// waiter, so it must not inherit the first caller's cancellation: an
	// abandoned request would otherwise cache a false unreachable.
	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.probeTimeout)
	defer cancel()

	start := time.Now()
	err := p.Probe(probeCtx)
	report := Report{
		Target:    p.Name(),
		CheckedAt: a.now(),
		Latency:   time.Since(start),
	}

	if err != nil {
		report.State = remote.StateUnreachable
		report.Error = err.Error()
		a.logger.Warn("health probe failed",
			logger.String("target", p.Name()),
			logger.Duration("latency", report.Latency),
			logger.Error(err))
		return report
	}

	report.State = remote.StateConnected
	a.logger.Debug("health probe ok",
		logger.String("target", p.Name()),
		logger.Duration("latency", report.Latency))
	return report
}

// Status folds all target reports into one verdict: every enabled target
// connected => ok; any enabled target unreachable => degraded; no target
// enabled at all => disabled.
func (a *Aggregator) Status(ctx context.Context) Status {
	reports := make([]Report, 0, len(a.probers))
	enabled := 0
	unreachable := 0

	for _, p := range a.probers {
		report := a.Check(ctx, p)
		reports = append(reports, report)
		if report.State == remote.StateDisabled {
			continue
		}
		enabled++
		if report.State == remote.StateUnreachable {
			unreachable++
		}
	}

	verdict := VerdictOK
	switch {
	case enabled == 0:
		verdict = VerdictDisabled
	case unreachable > 0:
		verdict = VerdictDegraded
	}

	return Status{Status: verdict, Targets: reports}
}
