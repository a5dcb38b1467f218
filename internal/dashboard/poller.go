package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Source produces the snapshot for a fixed scope.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Snapshot, error)

// Snapshot implements Source.
func (f SourceFunc) Snapshot(ctx context.Context) (Snapshot, error) {
	return f(ctx)
}

// Poller refreshes a snapshot from a Source on a fixed interval. Every
// fetch carries a monotonically increasing sequence number, and a
// response is dropped unless it belongs to the latest request issued, so
// a slow response can never land once a newer fetch is underway.
type Poller struct {
	source   Source
	interval time.Duration
	logger   *zap.Logger

	issued  atomic.Uint64
	mu      sync.Mutex
	applied uint64
	latest  Snapshot
	lastErr error
}

// Handle stops a running poller. Stop must be called on teardown; it
// cancels the timer and any in-flight fetch and waits for the loop to
// exit.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop tears the poller down.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// NewPoller builds a poller. A non-positive interval falls back to 30s,
// the dashboard's refresh cadence.
func NewPoller(source Source, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		source:   source,
		interval: interval,
		logger:   logger,
		latest:   Zero(time.Now()),
	}
}

// Start fetches immediately, then on every interval tick until the
// returned handle is stopped. Ticks never wait on a slow fetch; each
// fetch runs independently and the sequence discipline resolves races.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var inflight sync.WaitGroup

		inflight.Add(1)
		go p.fetch(ctx, &inflight)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				inflight.Wait()
				return
			case <-ticker.C:
				inflight.Add(1)
				go p.fetch(ctx, &inflight)
			}
		}
	}()

	return &Handle{cancel: cancel, done: done}
}

// Latest returns the most recently applied snapshot and the error, if
// any, from the refresh that produced it. Errors are transient by
// construction; the poller keeps its schedule regardless.
func (p *Poller) Latest() (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.lastErr
}

// Refresh runs one fetch outside the timer, e.g. on mount.
func (p *Poller) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	p.fetch(ctx, &wg)
}

func (p *Poller) fetch(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	seq := p.issued.Add(1)

	snapshot, err := p.source.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Teardown; the response is no longer needed.
			return
		}
		p.logger.Warn("dashboard refresh failed", zap.Uint64("seq", seq), zap.Error(err))
		snapshot = Zero(time.Now())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq < p.issued.Load() {
		// A newer request is already underway; this response is stale
		// even if nothing newer has resolved yet.
		return
	}
	if seq <= p.applied {
		return
	}
	p.applied = seq
	p.latest = snapshot
	p.lastErr = err
}
