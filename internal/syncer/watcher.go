package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pritampani/UnivMarket/internal/logging"
)

// ProbeFunc reports whether the remote service is currently reachable.
type ProbeFunc func(ctx context.Context) bool

// Watcher turns connectivity transitions into reconciliation runs. The
// online signal comes either from periodic probing or from the host calling
// SetOnline directly; only the offline-to-online edge triggers a drain.
type Watcher struct {
	reconciler *Reconciler
	probe      ProbeFunc
	interval   time.Duration

	mu      sync.Mutex
	online  bool
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher. The watcher starts in the offline state, so
// the first successful probe (or SetOnline(true)) drains any backlog that
// accumulated while the process was down.
func NewWatcher(r *Reconciler, probe ProbeFunc, interval time.Duration) *Watcher {
	return &Watcher{
		reconciler: r,
		probe:      probe,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Online reports the last observed connectivity state.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// SetOnline feeds a connectivity signal. An offline-to-online transition
// runs a full reconciliation pass before returning; every other transition
// only records the state.
func (w *Watcher) SetOnline(ctx context.Context, online bool) {
	w.mu.Lock()
	wasOnline := w.online
	w.online = online
	w.mu.Unlock()

	if wasOnline == online {
		return
	}

	logging.Log.Info("connectivity changed", zap.Bool("online", online))

	if online {
		w.reconciler.RunAll(ctx)
	}
}

// Start begins periodic probing until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.probeLoop(ctx)
}

// Stop halts probing and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
}

func (w *Watcher) probeLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Probe once at startup rather than waiting a full interval.
	w.SetOnline(ctx, w.probe(ctx))

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.SetOnline(ctx, w.probe(ctx))
		}
	}
}
