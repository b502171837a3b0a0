// Package connectivity turns periodic backend probes into edge-triggered
// online/offline events.
package connectivity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Status int

const (
	Unknown Status = iota
	Online
	Offline
)

func (s Status) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	}
	return "unknown"
}

type Event struct {
	Status Status
	Err    error
	At     time.Time
}

// Prober checks that the backend is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Ping(ctx context.Context) error { return f(ctx) }

type Watcher struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status
	subs   []func(Event)
}

func NewWatcher(p Prober, interval, timeout time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		prober:   p,
		interval: interval,
		timeout:  timeout,
		logger:   logger.Named("connectivity"),
	}
}

// Subscribe registers fn for every status change. fn runs on the watcher
// goroutine and must not block.
func (w *Watcher) Subscribe(fn func(Event)) {
	w.mu.Lock()
	w.subs = append(w.subs, fn)
	w.mu.Unlock()
}

func (w *Watcher) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// Check probes once and emits an event if the status changed.
func (w *Watcher) Check(ctx context.Context) Status {
	pctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.prober.Ping(pctx)
	cancel()

	next := Online
	if err != nil {
		next = Offline
	}

	w.mu.Lock()
	changed := next != w.status
	w.status = next
	subs := append([](func(Event))(nil), w.subs...)
	w.mu.Unlock()

	if changed {
		ev := Event{Status: next, Err: err, At: time.Now()}
		if err != nil {
			w.logger.Warn("Backend unreachable", zap.Error(err))
		} else {
			w.logger.Info("Backend reachable")
		}
		for _, fn := range subs {
			fn(ev)
		}
	}
	return next
}

// Run probes until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	w.Check(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}
