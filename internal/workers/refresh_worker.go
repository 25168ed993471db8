package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/services"
)

// CycleRunner is the part of the tracker the worker drives
type CycleRunner interface {
	RunCycle(ctx context.Context) (*services.CycleResult, error)
	RefreshRate() int
}

// RefreshWorker runs a tracker cycle every refresh-rate seconds and keeps the latest result
type RefreshWorker struct {
	runner CycleRunner
	unit   time.Duration

	latest  atomic.Pointer[services.CycleResult]
	lastErr atomic.Pointer[string]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRefreshWorker(runner CycleRunner) *RefreshWorker {
	return &RefreshWorker{
		runner: runner,
		unit:   time.Second,
	}
}

// Start runs a cycle immediately and then on every tick until ctx is cancelled or Stop is called.
// The rate is re-read after every cycle so slider changes apply to the next wait.
func (w *RefreshWorker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		cancel()
		return nil
	}
	w.cancel = cancel
	w.done = done
	w.mu.Unlock()

	defer func() {
		close(done)
		w.mu.Lock()
		w.cancel = nil
		w.mu.Unlock()
	}()

	logging.Info("Refresh worker started", "refresh_rate_seconds", w.runner.RefreshRate())

	w.runOnce(ctx)

	timer := time.NewTimer(w.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("Refresh worker shutting down")
			return nil
		case <-timer.C:
			w.runOnce(ctx)
			timer.Reset(w.interval())
		}
	}
}

// Stop cancels a running Start and waits for it to return
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Latest returns the most recent successful cycle, or nil before the first one
func (w *RefreshWorker) Latest() *services.CycleResult {
	return w.latest.Load()
}

// LastError returns the message of the most recent failed cycle, cleared on success
func (w *RefreshWorker) LastError() string {
	if msg := w.lastErr.Load(); msg != nil {
		return *msg
	}
	return ""
}

// Publish records a result produced outside the loop, such as an on-demand HTTP refresh
func (w *RefreshWorker) Publish(result *services.CycleResult) {
	if result == nil {
		return
	}
	w.latest.Store(result)
	w.lastErr.Store(nil)
}

func (w *RefreshWorker) interval() time.Duration {
	return time.Duration(w.runner.RefreshRate()) * w.unit
}

func (w *RefreshWorker) runOnce(ctx context.Context) {
	result, err := w.runner.RunCycle(ctx)
	if err != nil {
		msg := err.Error()
		w.lastErr.Store(&msg)
		logging.Error("Refresh cycle failed", "error", err)
		return
	}
	w.Publish(result)
}
